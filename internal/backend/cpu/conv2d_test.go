package cpu

import (
	"testing"

	"github.com/born-ml/convlab/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConv2D_BasicForward tests a basic single-channel forward pass.
func TestConv2D_BasicForward(t *testing.T) {
	backend := New()

	// Simple pattern:
	// 1 2 3
	// 4 5 6
	// 7 8 9
	input := tensor.Matrix{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}

	// Identity-like kernel:
	// 1 0
	// 0 1
	kernel := tensor.Matrix{{1, 0}, {0, 1}}

	output := backend.Conv2D(input, kernel, 1)

	// out_h = (3 - 2) / 1 + 1 = 2
	// out_w = (3 - 2) / 1 + 1 = 2
	require.Equal(t, tensor.Shape{Rows: 2, Cols: 2}, output.Shape())

	// Expected output (diagonal sum):
	// [1,2,4,5] -> 1 + 5 = 6
	// [2,3,5,6] -> 2 + 6 = 8
	// [4,5,7,8] -> 4 + 8 = 12
	// [5,6,8,9] -> 5 + 9 = 14
	assert.Equal(t, tensor.Matrix{{6, 8}, {12, 14}}, output)
}

// TestConv2D_AllOnes checks a 5x5 ones input against a 3x3 ones kernel.
func TestConv2D_AllOnes(t *testing.T) {
	backend := New()

	output := backend.Conv2D(tensor.Full(5, 5, 1), tensor.Full(3, 3, 1), 1)

	assert.Equal(t, tensor.Full(3, 3, 9), output)
}

// TestConv2D_NoFlip verifies cross-correlation semantics.
func TestConv2D_NoFlip(t *testing.T) {
	backend := New()

	input := tensor.Matrix{{1, 2}, {3, 4}}
	kernel := tensor.Matrix{{1, 0}, {0, 0}}

	// A flipped kernel would pick 4.
	assert.Equal(t, tensor.Matrix{{1}}, backend.Conv2D(input, kernel, 1))
}

// TestConv2D_Stride tests convolution with stride=2.
func TestConv2D_Stride(t *testing.T) {
	backend := New()

	// 4x4 input numbered 1..16
	input := tensor.New(4, 4)
	for i := range input {
		for j := range input[i] {
			input[i][j] = float64(i*4 + j + 1)
		}
	}
	kernel := tensor.Full(2, 2, 1)

	output := backend.Conv2D(input, kernel, 2)

	// out = (4 - 2) / 2 + 1 = 2
	// [1,2,5,6]=14 [3,4,7,8]=22 [9,10,13,14]=46 [11,12,15,16]=54
	assert.Equal(t, tensor.Matrix{{14, 22}, {46, 54}}, output)
}

// TestConv2D_ShapeLaw checks H_out = floor((H-K)/stride)+1 across shapes.
func TestConv2D_ShapeLaw(t *testing.T) {
	backend := New()

	tests := []struct {
		h, w, kh, kw, stride int
	}{
		{5, 5, 3, 3, 1},
		{7, 5, 3, 3, 2},
		{8, 8, 3, 3, 3},
		{6, 9, 1, 1, 2},
		{5, 7, 5, 7, 1},
		{15, 15, 7, 7, 3},
		{4, 6, 2, 3, 1},
	}

	for _, tt := range tests {
		output := backend.Conv2D(tensor.Full(tt.h, tt.w, 1), tensor.Full(tt.kh, tt.kw, 1), tt.stride)
		want := tensor.Shape{
			Rows: (tt.h-tt.kh)/tt.stride + 1,
			Cols: (tt.w-tt.kw)/tt.stride + 1,
		}
		assert.Equal(t, want, output.Shape(), "input %dx%d kernel %dx%d stride %d", tt.h, tt.w, tt.kh, tt.kw, tt.stride)
	}
}

// TestConv2D_KernelLargerThanInput returns an empty matrix instead of failing.
func TestConv2D_KernelLargerThanInput(t *testing.T) {
	backend := New()

	assert.True(t, backend.Conv2D(tensor.Full(3, 3, 1), tensor.Full(4, 4, 1), 1).IsEmpty())
	assert.True(t, backend.Conv2D(tensor.Full(5, 3, 1), tensor.Full(3, 4, 1), 1).IsEmpty())
	assert.True(t, backend.Conv2D(tensor.Matrix{}, tensor.Full(1, 1, 1), 1).IsEmpty())
	assert.True(t, backend.Conv2D(tensor.Full(3, 3, 1), tensor.Matrix{}, 1).IsEmpty())
}

// TestConv2D_Ragged returns an empty matrix for rows of unequal length.
func TestConv2D_Ragged(t *testing.T) {
	backend := New()

	assert.True(t, backend.Conv2D(tensor.Full(3, 3, 1), tensor.Matrix{{1, 1}, {1, 1, 1, 1}}, 1).IsEmpty())
	assert.True(t, backend.Conv2D(tensor.Matrix{{1, 1, 1}, {1}, {1, 1, 1}}, tensor.Full(2, 2, 1), 1).IsEmpty())
}

// TestConv2D_Rounding rounds each output cell to three decimals.
func TestConv2D_Rounding(t *testing.T) {
	backend := New()

	input := tensor.Matrix{{0.1, 0.2}, {0.3, 0.4}}
	kernel := tensor.Matrix{{0.33, 0.33}, {0.33, 0.33}}

	output := backend.Conv2D(input, kernel, 1)
	assert.Equal(t, tensor.Matrix{{0.33}}, output)

	output = backend.Conv2D(tensor.Matrix{{1.23456}}, tensor.Matrix{{1}}, 1)
	assert.Equal(t, tensor.Matrix{{1.235}}, output)
}

// TestConv2D_InvalidStride treats stride < 1 as 1.
func TestConv2D_InvalidStride(t *testing.T) {
	backend := New()

	output := backend.Conv2D(tensor.Full(4, 4, 1), tensor.Full(2, 2, 1), 0)
	assert.Equal(t, tensor.Full(3, 3, 4), output)
}

// TestConv2D_DoesNotMutate leaves its operands untouched.
func TestConv2D_DoesNotMutate(t *testing.T) {
	backend := New()

	input := tensor.Matrix{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	kernel := tensor.Matrix{{-1, 0.5}, {0.25, 2}}
	inputCopy, kernelCopy := input.Clone(), kernel.Clone()

	_ = backend.Conv2D(input, kernel, 1)

	assert.Equal(t, inputCopy, input)
	assert.Equal(t, kernelCopy, kernel)
}
