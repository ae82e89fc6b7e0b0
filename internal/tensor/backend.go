package tensor

// Backend defines the interface that compute backends must implement.
// Backends handle the actual arithmetic for the convolution engine.
//
// Implementations:
//   - CPU: Pure Go (internal/backend/cpu)
type Backend interface {
	// Name returns a human readable backend name.
	Name() string

	// Conv2D cross-correlates a single input channel with a kernel.
	// The result is empty when the kernel is larger than the input.
	Conv2D(input, kernel Matrix, stride int) Matrix

	// Add performs element-wise addition.
	// Returns a *ShapeError wrapping ErrDimensionMismatch on differing shapes.
	Add(a, b Matrix) (Matrix, error)

	// AddScalar adds scalar to every element, returning a new matrix.
	AddScalar(m Matrix, scalar float64) Matrix
}
