// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go CPU backend.
package cpu

import (
	internalcpu "github.com/born-ml/convlab/internal/backend/cpu"
	"github.com/born-ml/convlab/tensor"
)

// Backend represents the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend.
//
// Example:
//
//	backend := cpu.New()
//	feature := backend.Conv2D(tensor.Full(5, 5, 1), tensor.Full(3, 3, 1), 1) // 3x3 of nines
func New() *Backend {
	return internalcpu.New()
}
