// Package cpu implements the pure Go CPU backend for the convolution engine.
package cpu

import (
	"github.com/born-ml/convlab/internal/tensor"
)

// CPUBackend implements matrix operations on the CPU.
type CPUBackend struct{}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Compile-time check that CPUBackend implements tensor.Backend.
var _ tensor.Backend = (*CPUBackend)(nil)
