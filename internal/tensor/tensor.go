// Package tensor provides the 2D matrices the convolution engine works on.
package tensor

// Matrix is a rectangular 2D array of float64 values stored row-major.
//
// A Matrix with zero rows is empty and reports zero columns. Every other
// Matrix has rows of identical length; use Validate to check values built
// by hand.
//
// A Matrix represents a single input channel, a kernel or a feature map.
type Matrix [][]float64

// Dims returns the number of rows and columns.
// An empty matrix returns (0, 0).
func (m Matrix) Dims() (rows, cols int) {
	if len(m) == 0 {
		return 0, 0
	}
	return len(m), len(m[0])
}

// Shape returns the dimensions as a Shape.
func (m Matrix) Shape() Shape {
	rows, cols := m.Dims()
	return Shape{Rows: rows, Cols: cols}
}

// Rows returns the number of rows.
func (m Matrix) Rows() int { return len(m) }

// Cols returns the number of columns.
func (m Matrix) Cols() int {
	_, cols := m.Dims()
	return cols
}

// IsEmpty reports whether the matrix has no rows.
func (m Matrix) IsEmpty() bool { return len(m) == 0 }

// Validate checks that every row has the same length.
func (m Matrix) Validate() error {
	if len(m) == 0 {
		return nil
	}
	cols := len(m[0])
	for i, row := range m {
		if len(row) != cols {
			return &ShapeError{
				Op:      "validate",
				Left:    Shape{Rows: len(m), Cols: cols},
				Details: ragged(i, len(row)),
				err:     ErrRagged,
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the matrix.
// The copy never shares row storage with m.
func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = make([]float64, len(row))
		copy(out[i], row)
	}
	return out
}

// Equal reports whether m and other hold the same values in the same shape.
// A nil matrix equals an empty one.
func (m Matrix) Equal(other Matrix) bool {
	if len(m) != len(other) {
		return false
	}
	for i := range m {
		if len(m[i]) != len(other[i]) {
			return false
		}
		for j := range m[i] {
			if m[i][j] != other[i][j] {
				return false
			}
		}
	}
	return true
}

// Sum returns the sum of all elements.
func (m Matrix) Sum() float64 {
	var sum float64
	for _, row := range m {
		for _, v := range row {
			sum += v
		}
	}
	return sum
}

// CountZeros returns the number of elements exactly equal to zero.
func (m Matrix) CountZeros() int {
	n := 0
	for _, row := range m {
		for _, v := range row {
			if v == 0 {
				n++
			}
		}
	}
	return n
}
