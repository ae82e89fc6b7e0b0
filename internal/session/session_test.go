package session

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/born-ml/convlab/internal/nn"
	"github.com/born-ml/convlab/internal/store"
	"github.com/born-ml/convlab/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_GeneratesFromConfig(t *testing.T) {
	s := New(DefaultConfig(), WithSeed(1))

	snap, err := s.Snapshot()
	require.NoError(t, err)

	require.Len(t, snap.Inputs, 3)
	for _, in := range snap.Inputs {
		assert.Equal(t, tensor.Shape{Rows: 5, Cols: 5}, in.Shape())
	}
	require.Len(t, snap.Filters, 2)
	for _, f := range snap.Filters {
		require.Len(t, f.Kernels, 3)
		assert.Equal(t, tensor.Shape{Rows: 3, Cols: 3}, f.Kernels[0].Weights.Shape())
	}
	require.Len(t, snap.Outputs, 2)
	assert.Equal(t, tensor.Shape{Rows: 3, Cols: 3}, snap.Outputs[0].Final.Shape())
	assert.Len(t, snap.Outputs[0].Intermediates, 3)
}

func TestNew_ClampsConfig(t *testing.T) {
	s := New(Config{InputHeight: 100, InputChannels: -1, Sparsity: 100}, WithSeed(1))
	cfg := s.Config()
	assert.Equal(t, 15, cfg.InputHeight)
	assert.Equal(t, 1, cfg.InputChannels)
	assert.Equal(t, 99, cfg.Sparsity)
}

func TestNew_Reproducible(t *testing.T) {
	a, err := New(DefaultConfig(), WithSeed(42)).Snapshot()
	require.NoError(t, err)
	b, err := New(DefaultConfig(), WithSeed(42)).Snapshot()
	require.NoError(t, err)

	assert.Equal(t, a.Inputs, b.Inputs)
	assert.Equal(t, a.Filters, b.Filters)
	assert.NotEqual(t, a.Generation, b.Generation)
}

func TestUpdate_StructuralRegenerates(t *testing.T) {
	s := New(DefaultConfig(), WithSeed(1))
	gen := s.Generation()

	cfg, err := s.Update(map[string]any{"inputChannels": 2})
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.InputChannels)
	assert.NotEqual(t, gen, s.Generation())

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Len(t, snap.Inputs, 2)
	for _, f := range snap.Filters {
		assert.Len(t, f.Kernels, 2, "filters must match the new channel count")
	}
}

func TestUpdate_StrideKeepsData(t *testing.T) {
	s := New(DefaultConfig(), WithSeed(1))
	before, err := s.Snapshot()
	require.NoError(t, err)

	_, err = s.Update(map[string]any{"stride": 2, "padding": 1})
	require.NoError(t, err)

	after, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, before.Generation, after.Generation)
	assert.Equal(t, before.Inputs, after.Inputs)
	assert.Equal(t, before.Filters, after.Filters)

	// (5 + 2 - 3) / 2 + 1 = 3
	assert.Equal(t, tensor.Shape{Rows: 3, Cols: 3}, after.Outputs[0].Final.Shape())
	outputs, err := nn.ComputeConvLayer(after.Inputs, after.Filters, 2, 1, s.backend)
	require.NoError(t, err)
	assert.Equal(t, outputs, after.Outputs)
}

func TestUpdate_UnknownFieldKeepsState(t *testing.T) {
	s := New(DefaultConfig(), WithSeed(1))
	gen := s.Generation()

	_, err := s.Update(map[string]any{"depth": 3})
	assert.True(t, errors.Is(err, ErrUnknownField))
	assert.Equal(t, DefaultConfig(), s.Config())
	assert.Equal(t, gen, s.Generation())
}

func TestOutputs_Memoized(t *testing.T) {
	s := New(DefaultConfig(), WithSeed(1))

	first, err := s.Outputs()
	require.NoError(t, err)
	second, err := s.Outputs()
	require.NoError(t, err)
	assert.Same(t, &first[0], &second[0], "unchanged tuple reuses the cached output")

	_, err = s.Update(map[string]any{"padding": 1})
	require.NoError(t, err)
	third, err := s.Outputs()
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{Rows: 5, Cols: 5}, third[0].Final.Shape())

	_, err = s.Update(map[string]any{"padding": 0})
	require.NoError(t, err)
	fourth, err := s.Outputs()
	require.NoError(t, err)
	assert.Equal(t, first, fourth)

	s.Regenerate()
	fifth, err := s.Outputs()
	require.NoError(t, err)
	assert.NotEqual(t, first, fifth, "regenerated data must not reuse the stale output")
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := New(DefaultConfig(), WithSeed(1))

	snap, err := s.Snapshot()
	require.NoError(t, err)
	snap.Inputs[0][0][0] = -100
	snap.Filters[0].Kernels[0].Weights[0][0] = -100

	again, err := s.Snapshot()
	require.NoError(t, err)
	assert.NotEqual(t, -100.0, again.Inputs[0][0][0])
	assert.NotEqual(t, -100.0, again.Filters[0].Kernels[0].Weights[0][0])
}

func TestSnapshot_OutputsAreACopy(t *testing.T) {
	s := New(DefaultConfig(), WithSeed(1))

	want, err := s.Outputs()
	require.NoError(t, err)
	final := want[0].Final[0][0]
	partial := want[0].Intermediates[1][0][0]

	snap, err := s.Snapshot()
	require.NoError(t, err)
	snap.Outputs[0].Final[0][0] = 12345
	snap.Outputs[0].Intermediates[1][0][0] = 12345

	got, err := s.Outputs()
	require.NoError(t, err)
	assert.Equal(t, final, got[0].Final[0][0])
	assert.Equal(t, partial, got[0].Intermediates[1][0][0])

	again, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, final, again.Outputs[0].Final[0][0])
}

func TestSession_Sparsity(t *testing.T) {
	s := New(Config{InputHeight: 15, InputWidth: 15, InputChannels: 5, NumFilters: 6, KernelSize: 7, Stride: 1, Sparsity: 99}, WithSeed(5))

	snap, err := s.Snapshot()
	require.NoError(t, err)

	zeros, total := 0, 0
	for _, f := range snap.Filters {
		for _, k := range f.Kernels {
			zeros += k.Weights.CountZeros()
			total += 49
		}
	}
	assert.Greater(t, float64(zeros)/float64(total), 0.95)
}

func TestWithRanges(t *testing.T) {
	s := New(DefaultConfig(), WithSeed(1), WithRanges(Ranges{InputMin: 1, InputMax: 1, WeightMin: 2, WeightMax: 2}))

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, tensor.Full(5, 5, 1), snap.Inputs[0])
	assert.Equal(t, tensor.Full(3, 3, 2), snap.Filters[0].Kernels[0].Weights)
	// 3 channels * 9 cells * 1 * 2
	assert.Equal(t, tensor.Full(3, 3, 54), snap.Outputs[0].Final)
}

func TestOpen_DefaultsAndPersistence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "convlab")
	kv := store.New(dir)

	s, err := Open(kv, WithSeed(1))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), s.Config())

	_, err = s.Update(map[string]any{"inputHeight": 9, "stride": 2})
	require.NoError(t, err)

	var saved Config
	require.NoError(t, kv.Get(ConfigKey, &saved))
	assert.Equal(t, 9, saved.InputHeight)
	assert.Equal(t, 2, saved.Stride)

	reopened, err := Open(store.New(dir), WithSeed(1))
	require.NoError(t, err)
	assert.Equal(t, s.Config(), reopened.Config())

	require.NoError(t, reopened.Reset())
	require.NoError(t, kv.Get(ConfigKey, &saved))
	assert.Equal(t, DefaultConfig(), saved)
}

func TestOpen_ClampsStoredConfig(t *testing.T) {
	kv := store.New(t.TempDir())
	require.NoError(t, kv.Set(ConfigKey, map[string]int{"inputHeight": 99, "kernelSize": 2}))

	s, err := Open(kv, WithSeed(1))
	require.NoError(t, err)
	assert.Equal(t, 15, s.Config().InputHeight)
	assert.Equal(t, 1, s.Config().KernelSize)
	assert.Equal(t, 3, s.Config().InputChannels, "missing fields keep their defaults")
}

type failingKV struct{ err error }

func (f failingKV) Get(string, any) error { return f.err }
func (f failingKV) Set(string, any) error { return f.err }

func TestOpen_UndecodableConfig(t *testing.T) {
	kv := store.New(t.TempDir())
	require.NoError(t, kv.Set(ConfigKey, map[string]any{"inputHeight": "seven"}))

	s, err := Open(kv, WithSeed(1))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), s.Config())

	require.NoError(t, s.Reset())
	var saved Config
	require.NoError(t, kv.Get(ConfigKey, &saved))
	assert.Equal(t, DefaultConfig(), saved)
}

func TestUpdate_SaveFailureKeepsState(t *testing.T) {
	s := New(DefaultConfig(), WithSeed(1))
	before, err := s.Snapshot()
	require.NoError(t, err)

	s.kv = failingKV{err: errors.New("disk full")}

	cfg, err := s.Update(map[string]any{"inputChannels": 1, "padding": 2})
	require.Error(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Contains(t, err.Error(), "save config")

	after, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, before, after)

	require.Error(t, s.Reset())
	assert.Equal(t, before.Generation, s.Generation())
}

func TestOpen_StoreError(t *testing.T) {
	_, err := Open(failingKV{err: errors.New("disk on fire")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestSetConfig(t *testing.T) {
	s := New(DefaultConfig(), WithSeed(1))
	gen := s.Generation()

	cfg := DefaultConfig()
	cfg.Padding = 2
	require.NoError(t, s.SetConfig(cfg))
	assert.Equal(t, gen, s.Generation())

	cfg.KernelSize = 5
	require.NoError(t, s.SetConfig(cfg))
	assert.NotEqual(t, gen, s.Generation())
}

func TestCountOps(t *testing.T) {
	s := New(DefaultConfig(), WithSeed(1))
	r := s.Ops()
	assert.Equal(t, "3 x 3 x 2", r.OutputShape())
	// 18 cells * 27 multiplications
	assert.Equal(t, 486.0, r.Mults)
}
