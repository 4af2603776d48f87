package renderer

import (
	"fmt"
	"image"
	"time"

	"github.com/borealisgfx/borealis/log"
	"github.com/borealisgfx/borealis/scene"
	"github.com/borealisgfx/borealis/tracer"
)

// The default batch renderer: runs the configured number of progressive
// iterations on the attached tracer and keeps the latest presented frame.
type defaultRenderer struct {
	logger log.Logger

	sc     *scene.Scene
	tracer tracer.Tracer
	opts   Options

	frame *image.RGBA
	stats FrameStats
}

// Create a renderer that drives the supplied tracer. The renderer takes
// ownership of the tracer and initializes it against the scene.
func NewDefault(sc *scene.Scene, tr tracer.Tracer, opts Options) (Renderer, error) {
	if opts.Iterations == 0 {
		return nil, fmt.Errorf("renderer: iteration count must be positive for batch rendering")
	}

	if err := tr.Init(sc); err != nil {
		tr.Close()
		return nil, err
	}

	return &defaultRenderer{
		logger: log.New("renderer"),
		sc:     sc,
		tracer: tr,
		opts:   opts,
		frame:  image.NewRGBA(image.Rect(0, 0, sc.Camera.ResX, sc.Camera.ResY)),
	}, nil
}

// Render all configured iterations.
func (r *defaultRenderer) Render() error {
	start := time.Now()

	for iteration := uint32(1); iteration <= r.opts.Iterations; iteration++ {
		if err := r.renderIteration(iteration); err != nil {
			return err
		}

		if r.opts.ReportInterval > 0 && iteration%r.opts.ReportInterval == 0 {
			trStats := r.tracer.Stats()
			r.logger.Noticef(
				"iteration %d/%d: %d bounces, %d converged pixels, %s",
				iteration, r.opts.Iterations, trStats.Bounces,
				trStats.ConvergedPixels, trStats.FrameTime,
			)
		}
	}

	r.stats.RenderTime = time.Since(start)
	return nil
}

func (r *defaultRenderer) renderIteration(iteration uint32) error {
	if err := r.tracer.TraceFrame(r.frame.Pix, 0, iteration); err != nil {
		return err
	}

	trStats := r.tracer.Stats()
	r.stats.Iterations = iteration
	r.stats.Bounces = trStats.Bounces
	r.stats.ConvergedPixels = trStats.ConvergedPixels
	r.stats.Timings = trStats.Timings
	return nil
}

// Shutdown renderer and the attached tracer.
func (r *defaultRenderer) Close() {
	r.tracer.Close()
}

// Get the most recently presented frame.
func (r *defaultRenderer) Frame() *image.RGBA {
	return r.frame
}

// Get render statistics.
func (r *defaultRenderer) Stats() FrameStats {
	return r.stats
}
