package main

import (
	"os"

	"github.com/urfave/cli"

	"github.com/borealisgfx/borealis/cmd"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	traceFlags := []cli.Flag{
		cli.IntFlag{
			Name:  "depth",
			Value: 8,
			Usage: "maximum bounces per path",
		},
		cli.IntFlag{
			Name:  "workers",
			Value: 0,
			Usage: "worker pool size (0 = one per CPU)",
		},
		cli.BoolFlag{
			Name:  "cache-first-bounce",
			Usage: "reuse first-bounce intersections across iterations (disables antialiasing and motion blur)",
		},
		cli.BoolFlag{
			Name:  "no-sort",
			Usage: "disable material-locality sorting before shading",
		},
		cli.BoolFlag{
			Name:  "no-compact",
			Usage: "disable active-path compaction between bounces",
		},
		cli.BoolFlag{
			Name:  "adaptive",
			Usage: "skip pixels whose estimate variance drops below the threshold",
		},
		cli.IntFlag{
			Name:  "adaptive-min-samples",
			Value: 16,
			Usage: "iterations before a pixel may be frozen",
		},
		cli.Float64Flag{
			Name:  "adaptive-threshold",
			Value: 0.001,
			Usage: "variance threshold for freezing a pixel",
		},
	}

	app := cli.NewApp()
	app.Name = "borealis"
	app.Usage = "render scenes using progressive path tracing"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "describe",
			Usage:     "parse and validate a scene file and print its contents",
			ArgsUsage: "scene_file",
			Action:    cmd.DescribeScene,
		},
		{
			Name:  "render",
			Usage: "render scene",
			Subcommands: []cli.Command{
				{
					Name:        "frame",
					Usage:       "render single frame",
					Description: `Render a scene into a png file.`,
					ArgsUsage:   "scene_file",
					Flags: append([]cli.Flag{
						cli.IntFlag{
							Name:  "iterations",
							Value: 64,
							Usage: "progressive iterations (samples per pixel)",
						},
						cli.IntFlag{
							Name:  "report-interval",
							Value: 16,
							Usage: "log progress every N iterations (0 = off)",
						},
						cli.StringFlag{
							Name:  "out, o",
							Value: "frame.png",
							Usage: "image filename for the rendered frame",
						},
					}, traceFlags...),
					Action: cmd.RenderFrame,
				},
				{
					Name:        "interactive",
					Usage:       "render interactive view of the scene",
					Description: `Open a window and progressively refine the image; arrow keys move the camera, mouse drag aims it.`,
					ArgsUsage:   "scene_file",
					Flags: append([]cli.Flag{
						cli.IntFlag{
							Name:  "iterations",
							Value: 0,
							Usage: "iteration budget per camera position (0 = unlimited)",
						},
					}, traceFlags...),
					Action: cmd.RenderInteractive,
				},
			},
		},
	}

	app.Run(os.Args)
}
