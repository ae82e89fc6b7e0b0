// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the matrices convlab works on.
//
// A Matrix is a rectangular [][]float64 holding one input channel, one
// kernel or one feature map.
//
// Example:
//
//	m := tensor.Full(5, 5, 1)
//	padded := tensor.Pad(m, 1) // 7x7
package tensor

import (
	"math/rand"

	"github.com/born-ml/convlab/internal/tensor"
)

// Matrix is a rectangular 2D array of float64 values.
type Matrix = tensor.Matrix

// Shape represents the dimensions of a matrix.
type Shape = tensor.Shape

// Backend is the interface compute backends implement.
type Backend = tensor.Backend

// ShapeError describes a shape failure in detail.
type ShapeError = tensor.ShapeError

// Errors.
var (
	ErrDimensionMismatch = tensor.ErrDimensionMismatch
	ErrRagged            = tensor.ErrRagged
)

// New creates a zero-filled matrix.
func New(rows, cols int) Matrix {
	return tensor.New(rows, cols)
}

// Full creates a matrix filled with value.
func Full(rows, cols int, value float64) Matrix {
	return tensor.Full(rows, cols, value)
}

// FromRows creates a matrix from a copy of rows, rejecting ragged input.
func FromRows(rows [][]float64) (Matrix, error) {
	return tensor.FromRows(rows)
}

// Random creates a matrix with cells uniform in [lo, hi], rounded to two decimals.
func Random(rows, cols int, lo, hi float64, rng *rand.Rand) Matrix {
	return tensor.Random(rows, cols, lo, hi, rng)
}

// Pad surrounds m with padding rows and columns of zeros.
func Pad(m Matrix, padding int) Matrix {
	return tensor.Pad(m, padding)
}

// Round rounds x half away from zero to digits decimal places.
func Round(x float64, digits int) float64 {
	return tensor.Round(x, digits)
}
