package cpu

import (
	"github.com/born-ml/convlab/internal/tensor"
)

// Add performs element-wise addition, rounding each sum to three decimals.
//
// Returns a *tensor.ShapeError wrapping tensor.ErrDimensionMismatch if the
// operands differ in rows or columns. Neither operand is modified.
func (cpu *CPUBackend) Add(a, b tensor.Matrix) (tensor.Matrix, error) {
	if !a.Shape().Equal(b.Shape()) {
		return nil, tensor.MismatchError("add", a, b)
	}

	rows, cols := a.Dims()
	result := tensor.New(rows, cols)
	for i := 0; i < rows; i++ {
		addRow(result[i], a[i], b[i])
	}
	return result, nil
}

// AddScalar adds scalar to every element, rounding to three decimals.
// The input is left untouched.
func (cpu *CPUBackend) AddScalar(m tensor.Matrix, scalar float64) tensor.Matrix {
	rows, cols := m.Dims()
	result := tensor.New(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			result[i][j] = tensor.Round(m[i][j]+scalar, tensor.ArithmeticDigits)
		}
	}
	return result
}

func addRow(dst, a, b []float64) {
	for j := range dst {
		dst[j] = tensor.Round(a[j]+b[j], tensor.ArithmeticDigits)
	}
}
