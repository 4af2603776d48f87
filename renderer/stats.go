package renderer

import (
	"time"

	"github.com/borealisgfx/borealis/tracer"
)

type FrameStats struct {
	// Completed progressive iterations.
	Iterations uint32

	// Total render time across all iterations.
	RenderTime time.Duration

	// Bounces executed by the last iteration.
	Bounces int

	// Pixels whose estimate is frozen by the adaptive controller.
	ConvergedPixels int

	// Per-stage timing breakdown of the last iteration.
	Timings tracer.StageTimings
}
