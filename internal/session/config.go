package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ErrUnknownField is returned by Merge for keys Config does not define.
var ErrUnknownField = errors.New("unknown config field")

// Config holds the hyperparameters of the visualized layer.
type Config struct {
	InputHeight   int `json:"inputHeight" mapstructure:"inputHeight"`
	InputWidth    int `json:"inputWidth" mapstructure:"inputWidth"`
	InputChannels int `json:"inputChannels" mapstructure:"inputChannels"`
	NumFilters    int `json:"numFilters" mapstructure:"numFilters"`
	KernelSize    int `json:"kernelSize" mapstructure:"kernelSize"`
	Stride        int `json:"stride" mapstructure:"stride"`
	Padding       int `json:"padding" mapstructure:"padding"`
	Sparsity      int `json:"sparsity" mapstructure:"sparsity"` // Percentage of kernel weights zeroed
}

// Range is an inclusive bound on an integer setting.
type Range struct {
	Min, Max int
}

// Clamp restricts v to the range.
func (r Range) Clamp(v int) int {
	return min(max(v, r.Min), r.Max)
}

// Recognized ranges. Values outside them are clamped rather than rejected.
var (
	HeightRange   = Range{3, 15}
	WidthRange    = Range{3, 15}
	ChannelsRange = Range{1, 5}
	FiltersRange  = Range{1, 6}
	StrideRange   = Range{1, 3}
	PaddingRange  = Range{0, 5}
	SparsityRange = Range{0, 99}

	// KernelSizes lists the allowed square kernel sizes in ascending order.
	KernelSizes = []int{1, 3, 5, 7}
)

// DefaultConfig returns the configuration a new session starts from.
func DefaultConfig() Config {
	return Config{
		InputHeight:   5,
		InputWidth:    5,
		InputChannels: 3,
		NumFilters:    2,
		KernelSize:    3,
		Stride:        1,
		Padding:       0,
		Sparsity:      0,
	}
}

// Clamp returns a copy of c with every field forced into its recognized range.
// The kernel size snaps to the nearest allowed size, preferring the smaller on ties.
func (c Config) Clamp() Config {
	c.InputHeight = HeightRange.Clamp(c.InputHeight)
	c.InputWidth = WidthRange.Clamp(c.InputWidth)
	c.InputChannels = ChannelsRange.Clamp(c.InputChannels)
	c.NumFilters = FiltersRange.Clamp(c.NumFilters)
	c.KernelSize = nearestKernelSize(c.KernelSize)
	c.Stride = StrideRange.Clamp(c.Stride)
	c.Padding = PaddingRange.Clamp(c.Padding)
	c.Sparsity = SparsityRange.Clamp(c.Sparsity)
	return c
}

func nearestKernelSize(k int) int {
	best := KernelSizes[0]
	for _, size := range KernelSizes[1:] {
		if abs(size-k) < abs(best-k) {
			best = size
		}
	}
	return best
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Merge applies a partial edit to c and returns the clamped result.
//
// Keys are the JSON field names (e.g. "inputHeight"). Values may be numbers
// or numeric strings. Unknown keys fail with ErrUnknownField and leave c
// unchanged.
func (c Config) Merge(edit map[string]any) (Config, error) {
	next := c

	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata:         &md,
		Result:           &next,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return c, err
	}

	if err := decoder.Decode(edit); err != nil {
		return c, fmt.Errorf("merge config: %w", err)
	}
	if len(md.Unused) > 0 {
		return c, fmt.Errorf("%w: %s", ErrUnknownField, strings.Join(md.Unused, ", "))
	}

	return next.Clamp(), nil
}

// NeedsRegeneration reports whether moving from c to next changes the shape
// or sparsity of the generated inputs and filters. Stride and padding only
// affect the derived output.
func (c Config) NeedsRegeneration(next Config) bool {
	return c.InputHeight != next.InputHeight ||
		c.InputWidth != next.InputWidth ||
		c.InputChannels != next.InputChannels ||
		c.NumFilters != next.NumFilters ||
		c.KernelSize != next.KernelSize ||
		c.Sparsity != next.Sparsity
}

// Ranges bounds the random values used when generating layer data.
type Ranges struct {
	InputMin, InputMax   float64
	WeightMin, WeightMax float64
}

// DefaultRanges returns inputs in [0, 9] and weights in [-1, 1].
func DefaultRanges() Ranges {
	return Ranges{InputMin: 0, InputMax: 9, WeightMin: -1, WeightMax: 1}
}
