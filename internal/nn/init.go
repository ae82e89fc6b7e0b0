package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/convlab/internal/tensor"
)

// RandomInputs creates channels input matrices of height x width with values
// drawn uniformly from [lo, hi] and rounded to two decimals.
//
// Negative counts and dimensions are treated as zero.
func RandomInputs(channels, height, width int, lo, hi float64, rng *rand.Rand) []tensor.Matrix {
	inputs := make([]tensor.Matrix, max(channels, 0))
	for i := range inputs {
		inputs[i] = tensor.Random(height, width, lo, hi, rng)
	}
	return inputs
}

// RandomKernel creates a size x size kernel with weights drawn uniformly from
// [lo, hi], then zeroes each weight independently with probability
// sparsity/100.
//
// Parameters:
//   - size: Kernel height and width
//   - lo, hi: Weight range
//   - sparsity: Percentage of weights to zero, in [0, 100]
//   - rng: Random source; nil uses the math/rand default source
func RandomKernel(size int, lo, hi, sparsity float64, rng *rand.Rand) Kernel {
	weights := tensor.Random(size, size, lo, hi, rng)
	Sparsify(weights, sparsity, rng)
	return Kernel{Weights: weights}
}

// Sparsify zeroes each element of m in place with probability sparsity/100.
// A sparsity of zero or less leaves m untouched and consumes no randomness.
func Sparsify(m tensor.Matrix, sparsity float64, rng *rand.Rand) {
	if sparsity <= 0 {
		return
	}
	for i := range m {
		for j := range m[i] {
			if float64Of(rng)*100 < sparsity {
				m[i][j] = 0
			}
		}
	}
}

// NewFilters creates count filters, each with one random kernel per channel
// and a zero bias. Filters are named "f-0", "f-1", and so on.
//
// Example:
//
//	rng := rand.New(rand.NewSource(1))
//	filters := nn.NewFilters(2, 3, 3, -1, 1, 0, rng) // 2 filters of 3 kernels, 3x3
func NewFilters(count, channels, kernelSize int, lo, hi, sparsity float64, rng *rand.Rand) []Filter {
	filters := make([]Filter, max(count, 0))
	for i := range filters {
		kernels := make([]Kernel, max(channels, 0))
		for k := range kernels {
			kernels[k] = RandomKernel(kernelSize, lo, hi, sparsity, rng)
		}
		filters[i] = Filter{
			ID:      FilterID(i),
			Kernels: kernels,
		}
	}
	return filters
}

// FilterID returns the identifier of the filter at index i.
func FilterID(i int) string {
	return fmt.Sprintf("f-%d", i)
}

//nolint:gosec // Using math/rand for visualization data (not security-critical)
func float64Of(rng *rand.Rand) float64 {
	if rng == nil {
		return rand.Float64()
	}
	return rng.Float64()
}
