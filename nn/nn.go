// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the single convolution layer convlab visualizes.
//
// # Overview
//
// A layer applies every Filter to a multi-channel input. Each filter holds
// one Kernel per input channel and a bias. For every filter the layer
// returns the per-channel partial convolutions (intermediates) and their
// biased sum (the feature map):
//
//	backend := cpu.New()
//	layer := nn.NewConvLayer(1, 0, backend)
//	outputs, err := layer.Forward(inputs, filters)
//	for _, out := range outputs {
//	    if !out.OK() {
//	        continue // filter kernels did not match the input channels
//	    }
//	    fmt.Println(out.Final, len(out.Intermediates))
//	}
//
// # Generation
//
// RandomInputs, RandomKernel and NewFilters draw data from a caller supplied
// *rand.Rand so results are reproducible under a fixed seed.
package nn

import (
	"math/rand"

	"github.com/born-ml/convlab/internal/nn"
	"github.com/born-ml/convlab/tensor"
)

// Kernel holds the weights a filter applies to one input channel.
type Kernel = nn.Kernel

// Filter is one kernel per input channel plus a bias.
type Filter = nn.Filter

// FilterOutput is the feature map and per-channel partial sums of one filter.
type FilterOutput = nn.FilterOutput

// ChannelMismatchError reports a filter whose kernel count differs from the input channels.
type ChannelMismatchError = nn.ChannelMismatchError

// ErrChannelMismatch is wrapped by every ChannelMismatchError.
var ErrChannelMismatch = nn.ErrChannelMismatch

// ConvLayer applies a set of filters to a multi-channel input.
type ConvLayer[B tensor.Backend] = nn.ConvLayer[B]

// NewConvLayer creates a convolution layer with the given stride and padding.
func NewConvLayer[B tensor.Backend](stride, padding int, backend B) *ConvLayer[B] {
	return nn.NewConvLayer(stride, padding, backend)
}

// ComputeConvLayer pads the inputs, applies every filter and returns one
// output per filter.
func ComputeConvLayer[B tensor.Backend](inputs []tensor.Matrix, filters []Filter, stride, padding int, backend B) ([]FilterOutput, error) {
	return nn.ComputeConvLayer(inputs, filters, stride, padding, backend)
}

// OutputDims returns the feature map size for a height x width input.
func OutputDims(height, width, kernelSize, stride, padding int) (rows, cols int) {
	return nn.OutputDims(height, width, kernelSize, stride, padding)
}

// RandomInputs creates channels matrices with values uniform in [lo, hi].
func RandomInputs(channels, height, width int, lo, hi float64, rng *rand.Rand) []tensor.Matrix {
	return nn.RandomInputs(channels, height, width, lo, hi, rng)
}

// RandomKernel creates a size x size kernel and zeroes sparsity percent of its weights.
func RandomKernel(size int, lo, hi, sparsity float64, rng *rand.Rand) Kernel {
	return nn.RandomKernel(size, lo, hi, sparsity, rng)
}

// NewFilters creates count filters with one random kernel per channel.
func NewFilters(count, channels, kernelSize int, lo, hi, sparsity float64, rng *rand.Rand) []Filter {
	return nn.NewFilters(count, channels, kernelSize, lo, hi, sparsity, rng)
}

// OpsParams describes a layer for operation counting.
type OpsParams = nn.OpsParams

// OpsReport is the arithmetic cost of one forward pass.
type OpsReport = nn.OpsReport

// CountOps counts the multiplications and additions a layer performs.
func CountOps(p OpsParams) OpsReport {
	return nn.CountOps(p)
}
