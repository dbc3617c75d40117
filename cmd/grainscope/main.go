package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

const (
	AppName    = "grainscope"
	AppVersion = "1.0.0"
)

const (
	flagConfig        = "config"
	flagReferenceArea = "reference-area"
	flagMinDistance   = "min-distance"
	flagInvert        = "invert"
	flagNoCLAHE       = "no-clahe"
	flagOverlayDir    = "overlay-dir"
	flagWorkers       = "workers"
	flagJSON          = "json"
	flagLogLevel      = "log-level"
)

func newApp() *cli.App {
	return &cli.App{
		Name:    AppName,
		Version: AppVersion,
		Usage:   "estimate grain count, ASTM grain size and carbon content of steel micrographs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Value:   "grainscope.yaml",
				Usage:   "load settings from `FILE`; defaults apply when it does not exist",
			},
			&cli.StringFlag{
				Name:  flagLogLevel,
				Usage: "override the configured log level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Usage:     "segment each image with both strategies and report metrics",
				ArgsUsage: "FILE...",
				Flags: []cli.Flag{
					&cli.Float64Flag{
						Name:  flagReferenceArea,
						Usage: "physical area of one image in mm^2 (overrides config)",
					},
					&cli.IntFlag{
						Name:  flagMinDistance,
						Usage: "minimum watershed seed separation in pixels (overrides config)",
					},
					&cli.BoolFlag{
						Name:  flagInvert,
						Usage: "treat dark regions as grains",
					},
					&cli.BoolFlag{
						Name:  flagNoCLAHE,
						Usage: "skip contrast enhancement",
					},
					&cli.StringFlag{
						Name:  flagOverlayDir,
						Usage: "write boundary and label overlays into `DIR`",
					},
					&cli.IntFlag{
						Name:  flagWorkers,
						Value: 1,
						Usage: "number of images processed concurrently",
					},
					&cli.BoolFlag{
						Name:  flagJSON,
						Usage: "print one JSON record per image and strategy instead of a table",
					},
				},
				Action: AnalyzeAction,
			},
			{
				Name:            "config",
				Usage:           "work with configuration files",
				HideHelpCommand: true,
				Subcommands: []*cli.Command{
					{
						Name:      "init",
						Usage:     "write the default configuration",
						ArgsUsage: "[PATH]",
						Action:    ConfigInitAction,
					},
				},
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		os.Exit(1)
	}
}
