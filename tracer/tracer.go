package tracer

import (
	"time"

	"github.com/borealisgfx/borealis/scene"
)

// Per-stage timings for the most recent iteration.
type StageTimings struct {
	RayGen    time.Duration
	Intersect time.Duration
	Sort      time.Duration
	Shade     time.Duration
	Compact   time.Duration
	Finalize  time.Duration
}

// Tracer statistics updated after every completed iteration.
type Stats struct {
	// Number of bounces executed by the last iteration.
	Bounces int

	// Number of pixels whose estimate has converged and is frozen.
	ConvergedPixels int

	// Total time for the last iteration.
	FrameTime time.Duration

	// Per-stage timing breakdown.
	Timings StageTimings
}

// A ProgressFunc is notified with the bounce count of each completed
// iteration. It is a side channel for UI/progress display and has no effect
// on the trace itself.
type ProgressFunc func(iteration uint32, bounces int)

type Tracer interface {
	// Get tracer id.
	Id() string

	// Allocate session buffers and mirror the scene. The scene is frozen
	// until Close.
	Init(sc *scene.Scene) error

	// Release all session resources. Safe to call on an uninitialized or
	// already closed tracer.
	Close()

	// Restart the progressive estimate (running average, adaptive
	// statistics and skip flags). Used when the camera moves.
	Reset()

	// Run one progressive iteration and write the current running-average
	// image as 8-bit RGBA into target, which must hold 4 bytes per pixel.
	// Iterations are numbered from 1.
	TraceFrame(target []uint8, frame, iteration uint32) error

	// Retrieve last iteration statistics.
	Stats() *Stats
}
