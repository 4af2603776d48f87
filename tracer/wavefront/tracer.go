// Package wavefront implements the progressive path-tracing pipeline: ray
// generation, brute-force intersection, material-sorted shading, active-set
// compaction and adaptive per-pixel termination, dispatched stage by stage
// on a compute device with a host synchronization point between stages.
package wavefront

import (
	"fmt"

	"github.com/borealisgfx/borealis/log"
	"github.com/borealisgfx/borealis/scene"
	"github.com/borealisgfx/borealis/tracer"
	"github.com/borealisgfx/borealis/tracer/device"
)

// Tracer is a trace session. It owns the device scene mirror and all
// per-pixel buffers between Init and Close, and advances the progressive
// estimate one iteration per TraceFrame call.
type Tracer struct {
	logger log.Logger

	id     string
	device *device.Device
	cfg    Config

	camera    *scene.Camera
	buffers   *bufferSet
	numPixels int

	stats tracer.Stats
}

// Create a new trace session on the given device. The config is validated
// and captured; it cannot change for the lifetime of the session.
func New(id string, dev *device.Device, cfg Config) (*Tracer, error) {
	if dev == nil {
		return nil, fmt.Errorf("wavefront: invalid device handle")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Tracer{
		logger: log.New("wavefront"),
		id:     id,
		device: dev,
		cfg:    cfg,
	}, nil
}

// Get tracer id.
func (tr *Tracer) Id() string {
	return tr.id
}

// Allocate session buffers and mirror the scene's geometry and material
// arrays. The scene is frozen until Close; only the camera may be mutated
// between frames (followed by Reset).
func (tr *Tracer) Init(sc *scene.Scene) error {
	if tr.buffers != nil {
		return fmt.Errorf("wavefront: tracer %s is already initialized", tr.id)
	}
	if err := sc.Validate(); err != nil {
		return err
	}

	buffers, err := newBufferSet(sc, tr.cfg.CacheFirstBounce)
	if err != nil {
		return err
	}

	tr.camera = sc.Camera
	tr.buffers = buffers
	tr.numPixels = sc.Camera.ResX * sc.Camera.ResY
	tr.stats = tracer.Stats{}

	tr.logger.Noticef(
		"tracer %s: mirrored %d objects and %d materials for a %dx%d frame on %s (%d workers)",
		tr.id, len(buffers.Geometry), len(buffers.Materials),
		sc.Camera.ResX, sc.Camera.ResY, tr.device.Name(), tr.device.Workers(),
	)
	return nil
}

// Release all session resources. Safe to call on an uninitialized or
// already closed tracer.
func (tr *Tracer) Close() {
	if tr.buffers == nil {
		return
	}
	tr.buffers.Release()
	tr.buffers = nil
	tr.camera = nil
	tr.numPixels = 0
}

// Reset the progressive accumulation state. Called when the camera moves:
// the running average, the adaptive statistics and the skip flags all
// restart, and any first-bounce cache is repopulated on the next iteration.
func (tr *Tracer) Reset() {
	if tr.buffers == nil {
		return
	}
	tr.buffers.ClearAccumulator()
}

// Retrieve last iteration statistics.
func (tr *Tracer) Stats() *tracer.Stats {
	return &tr.stats
}

// Run one full progressive iteration — ray generation, the bounce loop and
// image accumulation — and write the current running-average image as 8-bit
// RGBA into target. Iterations are numbered from 1; iteration N contributes
// the N-th sample to every unconverged pixel's running average.
//
// Any kernel failure is fatal for the session: the error names the failing
// stage and no further iterations may be traced.
func (tr *Tracer) TraceFrame(target []uint8, frame, iteration uint32) error {
	if tr.buffers == nil {
		return fmt.Errorf("wavefront: tracer %s is not initialized", tr.id)
	}
	if iteration == 0 {
		return fmt.Errorf("wavefront: iterations are numbered from 1")
	}
	if len(target) < tr.numPixels*4 {
		return fmt.Errorf("wavefront: target surface holds %d bytes; need %d", len(target), tr.numPixels*4)
	}

	var timings tracer.StageTimings

	dur, err := tr.generateCameraRays(iteration)
	if err != nil {
		return err
	}
	timings.RayGen = dur

	// The initial active set is every path slot whose pixel has not been
	// frozen by the adaptive controller.
	paths := tr.buffers.Paths
	tr.buffers.Active.reset(tr.numPixels, func(slot int32) bool {
		return paths[slot].alive()
	})

	bounces := 0
	for depth := 0; depth < tr.cfg.TraceDepth && tr.buffers.Active.count > 0; depth++ {
		dur, err = tr.computeIntersections(iteration, depth)
		if err != nil {
			return err
		}
		timings.Intersect += dur

		if tr.cfg.SortByMaterial {
			dur, err = tr.sortByMaterial()
			if err != nil {
				return err
			}
			timings.Sort += dur
		}

		dur, err = tr.shadeMaterials(iteration, depth)
		if err != nil {
			return err
		}
		timings.Shade += dur

		bounces++

		if tr.cfg.CompactPaths {
			dur, err = tr.compactPaths()
			if err != nil {
				return err
			}
			timings.Compact += dur
		}
	}

	dur, err = tr.finalizeIteration(iteration)
	if err != nil {
		return err
	}
	timings.Finalize = dur

	dur, err = tr.presentFrame(target)
	if err != nil {
		return err
	}
	timings.Finalize += dur

	tr.stats.Bounces = bounces
	tr.stats.ConvergedPixels = tr.countConverged()
	tr.stats.Timings = timings
	tr.stats.FrameTime = timings.RayGen + timings.Intersect + timings.Sort +
		timings.Shade + timings.Compact + timings.Finalize

	if tr.cfg.Progress != nil {
		tr.cfg.Progress(iteration, bounces)
	}
	return nil
}

func (tr *Tracer) countConverged() int {
	count := 0
	for i := range tr.buffers.Stats {
		if tr.buffers.Stats[i].Skip {
			count++
		}
	}
	return count
}
