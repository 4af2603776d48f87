package wavefront

import (
	"fmt"

	"github.com/borealisgfx/borealis/tracer"
	"github.com/borealisgfx/borealis/types"
)

const (
	defaultTraceDepth         = 8
	defaultAdaptiveMinSamples = 16
)

// Config selects the pipeline variants for a trace session. It is captured
// at session start and never consulted mutably afterwards, so every variant
// combination can be exercised as plain data.
type Config struct {
	// Maximum number of bounces per path per iteration.
	TraceDepth int

	// Color assigned to paths that miss the scene or exhaust their
	// bounce budget.
	BackgroundColor types.Vec3

	// Reuse the first-bounce intersections computed during iteration 1
	// for every subsequent iteration. Forces deterministic primary rays:
	// antialias jitter, ray-time jitter and motion-blur interpolation are
	// all suppressed while caching is on.
	CacheFirstBounce bool

	// Reorder the active set by material id before shading to reduce
	// execution divergence inside shading work groups.
	SortByMaterial bool

	// Physically remove terminated paths from the active set after each
	// bounce. When disabled the bounce loop always runs TraceDepth
	// rounds and the shader skips dead paths with a flag check.
	CompactPaths bool

	// Freeze pixels whose running variance estimate drops below
	// AdaptiveThreshold after more than AdaptiveMinSamples iterations.
	Adaptive           bool
	AdaptiveMinSamples int
	AdaptiveThreshold  float32

	// The BSDF scatter implementation. Defaults to DefaultScatter.
	Scatter ScatterFunc

	// Optional observer notified with the bounce count of each completed
	// iteration.
	Progress tracer.ProgressFunc
}

// Populate unset fields with defaults and reject inconsistent settings.
func (cfg *Config) validate() error {
	if cfg.TraceDepth < 0 {
		return fmt.Errorf("wavefront: trace depth must be positive; got %d", cfg.TraceDepth)
	}
	if cfg.TraceDepth == 0 {
		cfg.TraceDepth = defaultTraceDepth
	}
	if cfg.AdaptiveThreshold < 0 {
		return fmt.Errorf("wavefront: adaptive variance threshold must be >= 0; got %g", cfg.AdaptiveThreshold)
	}
	if cfg.Adaptive && cfg.AdaptiveMinSamples == 0 {
		cfg.AdaptiveMinSamples = defaultAdaptiveMinSamples
	}
	if cfg.Scatter == nil {
		cfg.Scatter = DefaultScatter
	}
	return nil
}
