package tensor

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrDimensionMismatch = errors.New("matrix dimensions mismatch")
	ErrRagged            = errors.New("matrix rows have different lengths")
)

// ShapeError provides detailed information about a shape failure.
type ShapeError struct {
	Op      string // Operation that failed (e.g., "add")
	Left    Shape  // Shape of the first operand
	Right   Shape  // Shape of the second operand, zero for unary checks
	Details string // Additional details

	err error
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %v: %s", e.Op, e.Unwrap(), e.Details)
	}
	return fmt.Sprintf("%s: %v: %s vs %s", e.Op, e.Unwrap(), e.Left, e.Right)
}

// Unwrap returns the sentinel error the failure matches.
func (e *ShapeError) Unwrap() error {
	if e.err == nil {
		return ErrDimensionMismatch
	}
	return e.err
}

// MismatchError returns a ShapeError for an operation whose operands differ in shape.
func MismatchError(op string, a, b Matrix) *ShapeError {
	return &ShapeError{Op: op, Left: a.Shape(), Right: b.Shape()}
}

func ragged(row, length int) string {
	return fmt.Sprintf("row %d has length %d", row, length)
}
