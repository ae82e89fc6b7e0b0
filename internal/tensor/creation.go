package tensor

import (
	"math/rand"
)

// New creates a zero-filled matrix.
//
// Negative dimensions are treated as zero. A matrix with zero rows is empty;
// a matrix with rows but zero columns holds that many empty rows.
//
// Example:
//
//	m := tensor.New(3, 4) // 3x4 of zeros
func New(rows, cols int) Matrix {
	return Full(rows, cols, 0)
}

// Full creates a matrix filled with a specific value.
//
// Example:
//
//	m := tensor.Full(5, 5, 1) // 5x5 of ones
func Full(rows, cols int, value float64) Matrix {
	rows, cols = max(rows, 0), max(cols, 0)

	// One backing array keeps the rows contiguous.
	data := make([]float64, rows*cols)
	if value != 0 {
		for i := range data {
			data[i] = value
		}
	}

	m := make(Matrix, rows)
	for i := range m {
		m[i] = data[i*cols : (i+1)*cols : (i+1)*cols]
	}
	return m
}

// FromRows creates a matrix from a copy of the given rows.
//
// Returns an error wrapping ErrRagged if the rows differ in length.
//
// Example:
//
//	m, err := tensor.FromRows([][]float64{{1, 2}, {3, 4}})
func FromRows(rows [][]float64) (Matrix, error) {
	m := Matrix(rows)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m.Clone(), nil
}

// Random creates a matrix whose cells are drawn independently and uniformly
// from [min, max] and rounded to two decimal places.
//
// The generator is supplied by the caller so that tests can seed it.
// A nil rng falls back to the package-level math/rand source.
//
// Example:
//
//	rng := rand.New(rand.NewSource(42))
//	m := tensor.Random(5, 5, 0, 9, rng)
func Random(rows, cols int, lo, hi float64, rng *rand.Rand) Matrix {
	m := New(rows, cols)
	for i := range m {
		for j := range m[i] {
			m[i][j] = Round(uniform(rng)*(hi-lo)+lo, 2)
		}
	}
	return m
}

//nolint:gosec // Using math/rand for visualization data (not security-critical)
func uniform(rng *rand.Rand) float64 {
	if rng == nil {
		return rand.Float64()
	}
	return rng.Float64()
}
