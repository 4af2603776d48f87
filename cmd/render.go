package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/borealisgfx/borealis/renderer"
	"github.com/borealisgfx/borealis/scene"
	"github.com/borealisgfx/borealis/scene/reader"
	"github.com/borealisgfx/borealis/tracer/device"
	"github.com/borealisgfx/borealis/tracer/wavefront"
	"github.com/borealisgfx/borealis/types"
)

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, err := loadScene(ctx)
	if err != nil {
		return err
	}

	tr, err := setupTracer(ctx)
	if err != nil {
		return err
	}

	r, err := renderer.NewDefault(sc, tr, renderer.Options{
		Iterations:     uint32(ctx.Int("iterations")),
		ReportInterval: uint32(ctx.Int("report-interval")),
	})
	if err != nil {
		return err
	}
	defer r.Close()

	logger.Noticef("rendering %dx%d frame with %d iterations", sc.Camera.ResX, sc.Camera.ResY, ctx.Int("iterations"))
	start := time.Now()
	if err = r.Render(); err != nil {
		// Trace failures are fatal at this layer; report and abort.
		logger.Criticalf("%v", err)
		os.Exit(1)
	}
	logger.Noticef("rendered frame in %s", time.Since(start))

	if err = writeFrame(r, ctx.String("out")); err != nil {
		return err
	}

	displayFrameStats(r.Stats())
	return nil
}

// Render a continuously refining interactive view of the scene.
func RenderInteractive(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, err := loadScene(ctx)
	if err != nil {
		return err
	}

	tr, err := setupTracer(ctx)
	if err != nil {
		return err
	}

	r, err := renderer.NewInteractive(sc, tr, renderer.Options{
		Iterations: uint32(ctx.Int("iterations")),
	})
	if err != nil {
		return err
	}
	defer r.Close()

	if err = r.Render(); err != nil {
		logger.Criticalf("%v", err)
		os.Exit(1)
	}

	displayFrameStats(r.Stats())
	return nil
}

func loadScene(ctx *cli.Context) (*scene.Scene, error) {
	if ctx.NArg() != 1 {
		return nil, errors.New("missing scene file argument")
	}
	return reader.ReadScene(ctx.Args().First())
}

func setupTracer(ctx *cli.Context) (*wavefront.Tracer, error) {
	dev := device.New("worker-pool", ctx.Int("workers"))

	cfg := wavefront.Config{
		TraceDepth:         ctx.Int("depth"),
		BackgroundColor:    types.Vec3{},
		CacheFirstBounce:   ctx.Bool("cache-first-bounce"),
		SortByMaterial:     !ctx.Bool("no-sort"),
		CompactPaths:       !ctx.Bool("no-compact"),
		Adaptive:           ctx.Bool("adaptive"),
		AdaptiveMinSamples: ctx.Int("adaptive-min-samples"),
		AdaptiveThreshold:  float32(ctx.Float64("adaptive-threshold")),
	}

	return wavefront.New(dev.Name(), dev, cfg)
}

func writeFrame(r renderer.Renderer, imgFile string) error {
	f, err := os.Create(imgFile)
	if err != nil {
		return err
	}
	defer f.Close()

	if err = png.Encode(f, r.Frame()); err != nil {
		return err
	}
	logger.Noticef("wrote frame to %s", imgFile)
	return nil
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Stage", "Time (last iteration)"})
	table.AppendBulk([][]string{
		{"ray generation", stats.Timings.RayGen.String()},
		{"intersection", stats.Timings.Intersect.String()},
		{"material sort", stats.Timings.Sort.String()},
		{"shading", stats.Timings.Shade.String()},
		{"compaction", stats.Timings.Compact.String()},
		{"accumulate/present", stats.Timings.Finalize.String()},
	})
	table.SetFooter([]string{
		fmt.Sprintf("%d iterations, %d bounces, %d converged px", stats.Iterations, stats.Bounces, stats.ConvergedPixels),
		fmt.Sprintf("TOTAL %s", stats.RenderTime),
	})
	table.Render()

	logger.Noticef("frame statistics\n%s", buf.String())
}
