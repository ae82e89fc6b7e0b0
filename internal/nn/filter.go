package nn

import (
	"errors"
	"fmt"

	"github.com/born-ml/convlab/internal/tensor"
)

// Kernel holds the weights one filter applies to one input channel.
type Kernel struct {
	Weights tensor.Matrix `json:"weights"`
}

// Filter is an ordered set of kernels, one per input channel, plus a bias.
//
// The number of kernels must equal the number of input channels the filter
// is applied to. A filter that violates this produces an empty FilterOutput
// carrying a *ChannelMismatchError.
type Filter struct {
	ID      string   `json:"id"`
	Kernels []Kernel `json:"kernels"`
	Bias    float64  `json:"bias"`
	Color   string   `json:"color,omitempty"` // Display hint for visualizers
}

// Clone returns a deep copy of the filter.
func (f Filter) Clone() Filter {
	kernels := make([]Kernel, len(f.Kernels))
	for i, k := range f.Kernels {
		kernels[i] = Kernel{Weights: k.Weights.Clone()}
	}
	f.Kernels = kernels
	return f
}

// FilterOutput is the result of applying one filter to all input channels.
//
// Final is the feature map: bias plus the element-wise sum of Intermediates.
// Intermediates holds one partial convolution per channel, in channel order.
// Err is non-nil when the filter could not be applied; Final and
// Intermediates are empty in that case.
type FilterOutput struct {
	Final         tensor.Matrix   `json:"final"`
	Intermediates []tensor.Matrix `json:"intermediates"`
	Err           error           `json:"-"`
}

// OK reports whether the filter was applied.
func (o FilterOutput) OK() bool { return o.Err == nil }

// Clone returns a deep copy of the output. Err is shared.
func (o FilterOutput) Clone() FilterOutput {
	intermediates := make([]tensor.Matrix, len(o.Intermediates))
	for i, m := range o.Intermediates {
		intermediates[i] = m.Clone()
	}
	o.Final = o.Final.Clone()
	o.Intermediates = intermediates
	return o
}

// ErrChannelMismatch is returned when a filter's kernel count differs from
// the number of input channels.
var ErrChannelMismatch = errors.New("mismatch between input channels and filter kernels")

// ChannelMismatchError records which filter failed and why.
type ChannelMismatchError struct {
	Filter   string
	Kernels  int
	Channels int
}

// Error implements the error interface.
func (e *ChannelMismatchError) Error() string {
	return fmt.Sprintf("filter %q: %v: %d kernels, %d channels", e.Filter, ErrChannelMismatch, e.Kernels, e.Channels)
}

// Unwrap returns ErrChannelMismatch.
func (e *ChannelMismatchError) Unwrap() error { return ErrChannelMismatch }

func emptyOutput(err error) FilterOutput {
	return FilterOutput{
		Final:         tensor.Matrix{},
		Intermediates: []tensor.Matrix{},
		Err:           err,
	}
}
