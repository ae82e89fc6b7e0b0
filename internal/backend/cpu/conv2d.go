package cpu

import (
	"github.com/born-ml/convlab/internal/tensor"
)

// Conv2D cross-correlates a single input channel with a kernel.
//
// The kernel is not flipped. Padding must already be applied to input.
//
// Input shape:  [H, W]
// Kernel shape: [K_h, K_w]
// Output shape: [H_out, W_out]
//
// Where:
//
//	H_out = (H - K_h) / stride + 1
//	W_out = (W - K_w) / stride + 1
//
// Each output cell is rounded to three decimals. A kernel larger than the
// input in either dimension, an empty operand, or a ragged operand yields
// an empty matrix.
// A stride below 1 is treated as 1.
//
// Algorithm: Im2col
//  1. Transform input patches into rows (im2col)
//  2. Flatten kernel into a vector
//  3. Dot each row with the kernel
func (cpu *CPUBackend) Conv2D(input, kernel tensor.Matrix, stride int) tensor.Matrix {
	H, W := input.Dims()
	KH, KW := kernel.Dims()

	if KH > H || KW > W || H == 0 || KH == 0 || KW == 0 {
		return tensor.Matrix{}
	}
	if input.Validate() != nil || kernel.Validate() != nil {
		return tensor.Matrix{}
	}
	stride = max(stride, 1)

	HOut := (H-KH)/stride + 1
	WOut := (W-KW)/stride + 1

	// colBuf: [H_out * W_out, K_h * K_w]
	colWidth := KH * KW
	colBuf := make([]float64, HOut*WOut*colWidth)
	im2col(colBuf, input, KH, KW, HOut, WOut, stride)

	kernelData := make([]float64, 0, colWidth)
	for _, row := range kernel {
		kernelData = append(kernelData, row...)
	}

	output := tensor.New(HOut, WOut)
	for h := 0; h < HOut; h++ {
		for w := 0; w < WOut; w++ {
			patch := colBuf[(h*WOut+w)*colWidth:][:colWidth]
			sum := 0.0
			for k, weight := range kernelData {
				sum += patch[k] * weight
			}
			output[h][w] = tensor.Round(sum, tensor.ArithmeticDigits)
		}
	}
	return output
}

// im2col transforms the input into one row per output position.
//
// Each row of colBuf holds the K_h*K_w input values under the kernel window
// for that position, in kernel row-major order.
func im2col(colBuf []float64, input tensor.Matrix, KH, KW, HOut, WOut, stride int) {
	bufIdx := 0
	for outH := 0; outH < HOut; outH++ {
		for outW := 0; outW < WOut; outW++ {
			// Top-left corner in input space
			hStart := outH * stride
			wStart := outW * stride

			for kh := 0; kh < KH; kh++ {
				bufIdx += copy(colBuf[bufIdx:bufIdx+KW], input[hStart+kh][wStart:wStart+KW])
			}
		}
	}
}
