// Package session holds the layer configuration together with the inputs
// and filters generated from it, and derives the layer output on demand.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/born-ml/convlab/internal/backend/cpu"
	"github.com/born-ml/convlab/internal/logutil"
	"github.com/born-ml/convlab/internal/nn"
	"github.com/born-ml/convlab/internal/store"
	"github.com/born-ml/convlab/internal/tensor"
)

// ConfigKey is the store key the configuration is persisted under.
const ConfigKey = "cnn_config"

// KV is the persistence collaborator. *store.Store implements it.
type KV interface {
	Get(key string, v any) error
	Set(key string, v any) error
}

// Option configures a Session.
type Option func(*Session)

// WithRand sets the random source used to generate inputs and filters.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

// WithSeed seeds a private random source, making generation reproducible.
func WithSeed(seed int64) Option {
	//nolint:gosec // Using math/rand for visualization data (not security-critical)
	return WithRand(rand.New(rand.NewSource(seed)))
}

// WithRanges sets the value ranges for generated inputs and weights.
func WithRanges(r Ranges) Option {
	return func(s *Session) { s.ranges = r }
}

// WithBackend sets the compute backend. Defaults to the CPU backend.
func WithBackend(b tensor.Backend) Option {
	return func(s *Session) { s.backend = b }
}

// WithStore persists every configuration change to kv.
func WithStore(kv KV) Option {
	return func(s *Session) { s.kv = kv }
}

// Snapshot is a consistent view of a session: inputs and filters from the
// same generation, and the output derived from them with the config's
// stride and padding.
type Snapshot struct {
	Generation uuid.UUID
	Config     Config
	Inputs     []tensor.Matrix
	Filters    []nn.Filter
	Outputs    []nn.FilterOutput
}

// Session owns the configuration and the data generated from it.
//
// Changing the height, width, channel count, filter count, kernel size or
// sparsity regenerates every input and filter. Changing stride or padding
// only invalidates the derived output. Regeneration happens synchronously
// under the session lock, so readers never observe new inputs paired with
// stale filters.
type Session struct {
	mu sync.Mutex

	cfg     Config
	ranges  Ranges
	rng     *rand.Rand
	backend tensor.Backend
	kv      KV

	generation uuid.UUID
	inputs     []tensor.Matrix
	filters    []nn.Filter

	cache *outputCache
}

// outputCache memoizes the output for one (generation, stride, padding) tuple.
type outputCache struct {
	generation uuid.UUID
	stride     int
	padding    int

	outputs []nn.FilterOutput
	err     error
}

// New creates a session from cfg, clamped to the recognized ranges, and
// generates its inputs and filters.
func New(cfg Config, opts ...Option) *Session {
	s := &Session{
		cfg:     cfg.Clamp(),
		ranges:  DefaultRanges(),
		backend: cpu.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.regenerate()
	return s
}

// Open loads the configuration stored under ConfigKey, falling back to
// DefaultConfig when none is stored or the stored value cannot be decoded,
// and returns a session that persists later changes to kv. Inputs and
// filters are always regenerated.
func Open(kv KV, opts ...Option) (*Session, error) {
	cfg := DefaultConfig()
	if err := kv.Get(ConfigKey, &cfg); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
		case errors.Is(err, store.ErrDecode):
			slog.Warn("ignoring unreadable stored config, using defaults", "key", ConfigKey, "error", err)
		default:
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = DefaultConfig()
	}

	return New(cfg, append(opts, WithStore(kv))...), nil
}

// Config returns the current configuration.
func (s *Session) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Generation identifies the current set of inputs and filters.
func (s *Session) Generation() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Update merges a partial edit into the configuration.
//
// See Config.Merge for the accepted keys. The returned Config is the
// clamped result now in effect. If the edit cannot be saved, the session
// is left exactly as it was before the call.
func (s *Session) Update(edit map[string]any) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.cfg.Merge(edit)
	if err != nil {
		return s.cfg, err
	}
	if err := s.apply(next); err != nil {
		return s.cfg, err
	}
	return next, nil
}

// SetConfig replaces the whole configuration.
func (s *Session) SetConfig(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(cfg.Clamp())
}

// Reset restores DefaultConfig and regenerates all data.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := s.save()
	s.cfg = DefaultConfig()
	s.regenerate()
	if err := s.persist(); err != nil {
		s.restore(saved)
		return err
	}
	return nil
}

// Regenerate draws fresh inputs and filters without changing the configuration.
func (s *Session) Regenerate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regenerate()
}

// Outputs returns one FilterOutput per filter for the current inputs,
// filters, stride and padding. Results are memoized until any of those change.
// The returned slice is shared; callers must not modify it.
func (s *Session) Outputs() ([]nn.FilterOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outputs()
}

// Snapshot returns copies of the current inputs, filters and the matching
// output. Callers may modify the result freely.
func (s *Session) Snapshot() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	outputs, err := s.outputs()
	if err != nil {
		return Snapshot{}, err
	}

	inputs := make([]tensor.Matrix, len(s.inputs))
	for i, in := range s.inputs {
		inputs[i] = in.Clone()
	}
	filters := make([]nn.Filter, len(s.filters))
	for i, f := range s.filters {
		filters[i] = f.Clone()
	}
	copied := make([]nn.FilterOutput, len(outputs))
	for i, out := range outputs {
		copied[i] = out.Clone()
	}

	return Snapshot{
		Generation: s.generation,
		Config:     s.cfg,
		Inputs:     inputs,
		Filters:    filters,
		Outputs:    copied,
	}, nil
}

// Ops counts the arithmetic the current layer performs.
func (s *Session) Ops() nn.OpsReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CountOps(s.cfg)
}

// CountOps counts the arithmetic for a layer with the given configuration.
func CountOps(cfg Config) nn.OpsReport {
	return nn.CountOps(nn.OpsParams{
		InputHeight:   cfg.InputHeight,
		InputWidth:    cfg.InputWidth,
		InputChannels: cfg.InputChannels,
		NumFilters:    cfg.NumFilters,
		KernelSize:    cfg.KernelSize,
		Stride:        cfg.Stride,
		Padding:       cfg.Padding,
		Sparsity:      float64(cfg.Sparsity),
	})
}

// lock must be held
func (s *Session) apply(next Config) error {
	saved := s.save()
	s.cfg = next
	if saved.cfg.NeedsRegeneration(next) {
		s.regenerate()
	}
	if err := s.persist(); err != nil {
		s.restore(saved)
		return err
	}
	return nil
}

// state is the part of a Session rolled back when a change cannot be saved.
type state struct {
	cfg        Config
	inputs     []tensor.Matrix
	filters    []nn.Filter
	generation uuid.UUID
	cache      *outputCache
}

// lock must be held
func (s *Session) save() state {
	return state{cfg: s.cfg, inputs: s.inputs, filters: s.filters, generation: s.generation, cache: s.cache}
}

// lock must be held
func (s *Session) restore(st state) {
	s.cfg, s.inputs, s.filters, s.generation, s.cache = st.cfg, st.inputs, st.filters, st.generation, st.cache
}

// lock must be held
func (s *Session) regenerate() {
	cfg, r := s.cfg, s.ranges

	s.inputs = nn.RandomInputs(cfg.InputChannels, cfg.InputHeight, cfg.InputWidth, r.InputMin, r.InputMax, s.rng)
	s.filters = nn.NewFilters(cfg.NumFilters, cfg.InputChannels, cfg.KernelSize, r.WeightMin, r.WeightMax, float64(cfg.Sparsity), s.rng)
	s.generation = uuid.New()
	s.cache = nil

	slog.Debug("regenerated layer data",
		"generation", s.generation,
		"channels", cfg.InputChannels,
		"height", cfg.InputHeight,
		"width", cfg.InputWidth,
		"filters", cfg.NumFilters,
		"kernel", cfg.KernelSize,
		"sparsity", cfg.Sparsity)
}

// lock must be held
func (s *Session) outputs() ([]nn.FilterOutput, error) {
	if c := s.cache; c != nil && c.generation == s.generation && c.stride == s.cfg.Stride && c.padding == s.cfg.Padding {
		return c.outputs, c.err
	}

	var outputs []nn.FilterOutput
	var err error
	if len(s.inputs) == 0 || len(s.filters) == 0 {
		outputs = []nn.FilterOutput{}
	} else {
		outputs, err = nn.ComputeConvLayer(s.inputs, s.filters, s.cfg.Stride, s.cfg.Padding, s.backend)
	}

	logutil.Trace("computed layer output", "generation", s.generation, "stride", s.cfg.Stride, "padding", s.cfg.Padding)

	s.cache = &outputCache{
		generation: s.generation,
		stride:     s.cfg.Stride,
		padding:    s.cfg.Padding,
		outputs:    outputs,
		err:        err,
	}
	return outputs, err
}

// lock must be held
func (s *Session) persist() error {
	if s.kv == nil {
		return nil
	}
	if err := s.kv.Set(ConfigKey, s.cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}
