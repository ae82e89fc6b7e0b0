package nn

import "fmt"

// OpsParams describes a convolution layer for operation counting.
//
// Values are taken as given; the calculator is independent of the ranges a
// session enforces.
type OpsParams struct {
	InputHeight   int
	InputWidth    int
	InputChannels int
	NumFilters    int
	KernelSize    int
	Stride        int
	Padding       int
	Sparsity      float64
}

// OpsBreakdown splits the additions by where they happen.
type OpsBreakdown struct {
	Conv  float64 // Summation inside each kernel window
	Merge float64 // Summation across channels
	Bias  float64 // One bias add per output cell
}

// OpsReport is the arithmetic cost of one forward pass.
type OpsReport struct {
	OutputRows int
	OutputCols int
	NumFilters int
	Valid      bool // False when the kernel does not fit the padded input

	Mults     float64
	Adds      float64
	Total     float64
	Breakdown OpsBreakdown

	// Operations that multiply by, or add, a zero weight.
	ZeroMults float64
	ZeroAdds  float64
	ZeroTotal float64
}

// OutputShape formats the output volume as "rows x cols x filters".
func (r OpsReport) OutputShape() string {
	if !r.Valid {
		return "Invalid (<= 0)"
	}
	return fmt.Sprintf("%d x %d x %d", r.OutputRows, r.OutputCols, r.NumFilters)
}

// CountOps counts the multiplications and additions a layer performs.
//
// Per output cell of each filter:
//   - K*K*C multiplications
//   - (K*K - 1)*C additions inside the kernel windows
//   - C - 1 additions to merge channels
//   - 1 bias addition
//
// Zero-weight operations are estimated from the sparsity percentage, which
// is clamped to [0, 99]. A stride below 1 is treated as 1.
func CountOps(p OpsParams) OpsReport {
	stride := p.Stride
	if stride <= 0 {
		stride = 1
	}
	sparsity := min(max(p.Sparsity, 0), 99)

	rows, cols := OutputDims(p.InputHeight, p.InputWidth, p.KernelSize, stride, p.Padding)
	if rows <= 0 || cols <= 0 {
		return OpsReport{NumFilters: p.NumFilters}
	}

	k2 := float64(p.KernelSize * p.KernelSize)
	c := float64(p.InputChannels)
	cells := float64(rows * cols * p.NumFilters)

	r := OpsReport{
		OutputRows: rows,
		OutputCols: cols,
		NumFilters: p.NumFilters,
		Valid:      true,
		Mults:      cells * k2 * c,
		Breakdown: OpsBreakdown{
			Conv:  cells * (k2 - 1) * c,
			Merge: cells * max(c-1, 0),
			Bias:  cells,
		},
	}
	r.Adds = r.Breakdown.Conv + r.Breakdown.Merge + r.Breakdown.Bias
	r.Total = r.Mults + r.Adds

	r.ZeroMults = r.Mults * sparsity / 100
	r.ZeroAdds = r.ZeroMults
	r.ZeroTotal = r.ZeroMults + r.ZeroAdds
	return r
}
