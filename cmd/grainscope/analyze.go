package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"grainscope/internal/config"
	"grainscope/internal/imageio"
	"grainscope/internal/logger"
	"grainscope/internal/overlay"
	"grainscope/internal/pipeline"
	"grainscope/internal/shutdown"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

var boundaryColors = map[string]color.RGBA{
	"otsu":      {R: 255, A: 255},
	"watershed": {G: 255, A: 255},
}

type fileReport struct {
	path       string
	comparison *pipeline.Comparison
	err        error
}

// AnalyzeAction runs both strategies over every FILE argument.
func AnalyzeAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log, err := newLogger(c, cfg)
	if err != nil {
		return err
	}

	analyzer, err := pipeline.NewAnalyzer(cfg, log)
	if err != nil {
		return err
	}

	files := c.Args().Slice()
	if len(files) == 0 {
		return errors.New("no input files given")
	}

	overlayDir := c.String(flagOverlayDir)
	if overlayDir != "" {
		if err := os.MkdirAll(overlayDir, 0o755); err != nil {
			return fmt.Errorf("cannot create overlay directory: %w", err)
		}
	}

	sm := shutdown.NewManager(c.Context, log)
	stopListening := sm.Listen()
	defer stopListening()
	defer sm.Shutdown()

	var completed atomic.Int64
	sm.OnShutdown(func() {
		log.Debug("CLI", "batch finished", map[string]interface{}{
			"files":     len(files),
			"completed": completed.Load(),
		})
	})

	reports := make([]fileReport, len(files))
	g, ctx := errgroup.WithContext(sm.Context())
	g.SetLimit(max(1, c.Int(flagWorkers)))

	for i, path := range files {
		reports[i].path = path
		if !imageio.Supported(path) {
			log.Warning("CLI", "skipping unsupported file", map[string]interface{}{"path": path})
			reports[i].err = fmt.Errorf("unsupported file type: %s", path)
			continue
		}
		g.Go(func() error {
			img, err := imageio.Load(path)
			if err != nil {
				reports[i].err = err
				log.Error("CLI", err, map[string]interface{}{"path": path})
				return nil
			}
			cmp, err := analyzer.Compare(ctx, img.Gray)
			if err != nil {
				reports[i].err = err
				log.Error("CLI", err, map[string]interface{}{"path": path})
				return nil
			}
			reports[i].comparison = cmp
			completed.Add(1)
			if overlayDir != "" {
				if err := writeOverlays(overlayDir, img, cmp); err != nil {
					log.Error("CLI", err, map[string]interface{}{"path": path})
				}
			}
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if c.Bool(flagJSON) {
		if err := printJSON(c, reports); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(c.App.Writer, renderTable(reports))
	}

	var failed error
	for _, r := range reports {
		failed = multierr.Append(failed, r.err)
	}
	return failed
}

// ConfigInitAction writes the default configuration file.
func ConfigInitAction(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		path = c.String(flagConfig)
	}
	if err := config.CreateDefaultConfigFile(path); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "wrote %s\n", path)
	return nil
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String(flagConfig))
	if err != nil {
		return nil, err
	}
	if c.IsSet(flagReferenceArea) {
		cfg.Metrics.ReferenceAreaMM2 = c.Float64(flagReferenceArea)
	}
	if c.IsSet(flagMinDistance) {
		cfg.Watershed.MinDistance = c.Int(flagMinDistance)
	}
	if c.Bool(flagInvert) {
		cfg.Threshold.Invert = true
	}
	if c.Bool(flagNoCLAHE) {
		cfg.Preprocess.Enabled = false
	}
	if c.IsSet(flagLogLevel) {
		cfg.Logging.Level = c.String(flagLogLevel)
	}
	return cfg, cfg.Validate()
}

func newLogger(c *cli.Context, cfg *config.Config) (logger.Logger, error) {
	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	if cfg.Logging.Console {
		return logger.NewZerolog(zerolog.ConsoleWriter{Out: c.App.ErrWriter}, level), nil
	}
	return logger.NewZerolog(c.App.ErrWriter, level), nil
}

func writeOverlays(dir string, img *imageio.Image, cmp *pipeline.Comparison) error {
	base := strings.TrimSuffix(filepath.Base(img.Path), filepath.Ext(img.Path))
	var err error
	for _, r := range cmp.Results {
		bounds, berr := overlay.BoundaryOverlay(img.RGB, r.Labels, boundaryColors[r.Strategy])
		if berr != nil {
			err = multierr.Append(err, berr)
			continue
		}
		err = multierr.Append(err, imageio.SaveRGB(filepath.Join(dir, base+"_"+r.Strategy+"_boundaries.png"), bounds))

		labeled, lerr := overlay.Labels(img.RGB, r.Labels)
		if lerr != nil {
			err = multierr.Append(err, lerr)
			continue
		}
		err = multierr.Append(err, imageio.SaveRGB(filepath.Join(dir, base+"_"+r.Strategy+"_labels.png"), labeled))
	}
	return err
}

func renderTable(reports []fileReport) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"File", "Strategy", "Grains", "Mean area (px)", "G", "Carbon %", "Notes"})
	for _, r := range reports {
		if r.err != nil {
			t.AppendRow(table.Row{r.path, "-", "-", "-", "-", "-", r.err.Error()})
			continue
		}
		for _, res := range r.comparison.Results {
			rec := res.Record
			notes := make([]string, 0, len(rec.Degenerate))
			for _, d := range rec.Degenerate {
				notes = append(notes, string(d))
			}
			t.AppendRow(table.Row{
				r.path,
				rec.Strategy,
				rec.GrainCount,
				fmt.Sprintf("%.1f", rec.Areas.Mean),
				fmt.Sprintf("%.2f", rec.GNumber),
				fmt.Sprintf("%.3f", rec.CarbonFraction),
				strings.Join(notes, ","),
			})
		}
	}
	return t.Render()
}

type jsonRow struct {
	File   string      `json:"file"`
	Error  string      `json:"error,omitempty"`
	Record interface{} `json:"record,omitempty"`
}

func printJSON(c *cli.Context, reports []fileReport) error {
	enc := json.NewEncoder(c.App.Writer)
	for _, r := range reports {
		if r.err != nil {
			if err := enc.Encode(jsonRow{File: r.path, Error: r.err.Error()}); err != nil {
				return err
			}
			continue
		}
		for _, res := range r.comparison.Results {
			if err := enc.Encode(jsonRow{File: r.path, Record: res.Record}); err != nil {
				return err
			}
		}
	}
	return nil
}
