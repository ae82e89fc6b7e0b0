package tensor

// Pad surrounds the matrix with padding rows and columns of zeros on all four sides.
//
// Returns m itself when padding is zero or negative. Otherwise the result is a
// new (rows+2p)x(cols+2p) matrix with m embedded at offset (p, p).
//
// Example:
//
//	padded := tensor.Pad(tensor.Full(3, 3, 1), 1) // 5x5, ones in the centre
func Pad(m Matrix, padding int) Matrix {
	if padding <= 0 {
		return m
	}

	rows, cols := m.Dims()
	padded := New(rows+2*padding, cols+2*padding)
	for i := 0; i < rows; i++ {
		copy(padded[i+padding][padding:padding+cols], m[i])
	}
	return padded
}
