package tensor

import "fmt"

// Shape represents the dimensions of a matrix.
type Shape struct {
	Rows int
	Cols int
}

// NumElements returns the total number of elements.
func (s Shape) NumElements() int {
	return s.Rows * s.Cols
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	return s.Rows == other.Rows && s.Cols == other.Cols
}

// IsEmpty reports whether the shape describes an empty matrix.
func (s Shape) IsEmpty() bool {
	return s.Rows == 0
}

// String formats the shape as "rows x cols".
func (s Shape) String() string {
	return fmt.Sprintf("%dx%d", s.Rows, s.Cols)
}
