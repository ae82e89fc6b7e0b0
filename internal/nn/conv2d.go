package nn

import (
	"fmt"
	"log/slog"

	"github.com/born-ml/convlab/internal/tensor"
)

// ConvLayer applies a set of filters to a multi-channel input.
//
// For each filter, every padded input channel is cross-correlated with the
// filter's matching kernel. The per-channel partial results are kept as
// intermediates and summed element-wise with the bias into the final
// feature map:
//
//	final[r][c] = round(bias + Σ_k intermediates[k][r][c], 3)
//
// Output shape per filter:
//
//	out_h = (height + 2*padding - kernel_h) / stride + 1
//	out_w = (width + 2*padding - kernel_w) / stride + 1
//
// Example:
//
//	layer := nn.NewConvLayer(1, 1, cpu.New())
//	outputs, err := layer.Forward(inputs, filters)
type ConvLayer[B tensor.Backend] struct {
	stride  int
	padding int

	backend B
}

// NewConvLayer creates a convolution layer.
//
// Parameters:
//   - stride: Step between kernel positions (values below 1 become 1)
//   - padding: Zero padding added to every side of each channel (negative values become 0)
//   - backend: Backend for computation
func NewConvLayer[B tensor.Backend](stride, padding int, backend B) *ConvLayer[B] {
	return &ConvLayer[B]{
		stride:  max(stride, 1),
		padding: max(padding, 0),
		backend: backend,
	}
}

// Stride returns the layer stride.
func (c *ConvLayer[B]) Stride() int { return c.stride }

// Padding returns the layer padding.
func (c *ConvLayer[B]) Padding() int { return c.padding }

// Forward computes one FilterOutput per filter, in filter order.
//
// A filter whose kernel count differs from len(inputs) gets an empty output
// with a *ChannelMismatchError; the remaining filters are still computed.
// Forward returns an error only when partial results cannot be summed
// because channels produced feature maps of different shapes.
//
// Intermediates are never aliased by Final.
func (c *ConvLayer[B]) Forward(inputs []tensor.Matrix, filters []Filter) ([]FilterOutput, error) {
	padded := make([]tensor.Matrix, len(inputs))
	for i, input := range inputs {
		padded[i] = tensor.Pad(input, c.padding)
	}

	outputs := make([]FilterOutput, len(filters))
	for i, filter := range filters {
		out, err := c.forwardFilter(padded, filter)
		if err != nil {
			return nil, fmt.Errorf("conv layer: filter %q: %w", filter.ID, err)
		}
		outputs[i] = out
	}
	return outputs, nil
}

func (c *ConvLayer[B]) forwardFilter(padded []tensor.Matrix, filter Filter) (FilterOutput, error) {
	if len(filter.Kernels) != len(padded) {
		err := &ChannelMismatchError{Filter: filter.ID, Kernels: len(filter.Kernels), Channels: len(padded)}
		slog.Warn("conv layer: channel mismatch", "filter", filter.ID, "kernels", len(filter.Kernels), "channels", len(padded))
		return emptyOutput(err), nil
	}

	// Partial convolutions, one per channel
	partials := make([]tensor.Matrix, len(padded))
	for k, input := range padded {
		partials[k] = c.backend.Conv2D(input, filter.Kernels[k].Weights, c.stride)
	}

	if len(partials) == 0 {
		return emptyOutput(nil), nil
	}

	// Start from a copy so the running sum never aliases partials[0].
	total := partials[0].Clone()
	for k := 1; k < len(partials); k++ {
		var err error
		total, err = c.backend.Add(total, partials[k])
		if err != nil {
			return FilterOutput{}, err
		}
	}

	if filter.Bias != 0 {
		total = c.backend.AddScalar(total, filter.Bias)
	}

	return FilterOutput{Final: total, Intermediates: partials}, nil
}

// ComputeConvLayer is a convenience wrapper that builds a ConvLayer and runs Forward.
func ComputeConvLayer[B tensor.Backend](inputs []tensor.Matrix, filters []Filter, stride, padding int, backend B) ([]FilterOutput, error) {
	return NewConvLayer(stride, padding, backend).Forward(inputs, filters)
}

// OutputDims returns the feature map size for an input of height x width.
// Either dimension is zero or negative when the kernel does not fit.
func OutputDims(height, width, kernelSize, stride, padding int) (rows, cols int) {
	stride = max(stride, 1)
	rows = floorDiv(height+2*padding-kernelSize, stride) + 1
	cols = floorDiv(width+2*padding-kernelSize, stride) + 1
	return rows, cols
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
