// Package pipeline runs one micrograph through preprocessing, thresholding,
// a segmentation strategy and metric derivation. An Analyzer keeps no state
// between calls.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"grainscope/internal/config"
	"grainscope/internal/logger"
	"grainscope/internal/metrics"
	"grainscope/internal/models"
	"grainscope/internal/processing/filters"
	"grainscope/internal/processing/threshold"
	"grainscope/internal/segmentation"
)

const component = "Pipeline"

// Result is the outcome of one strategy on one image.
type Result struct {
	Strategy       string
	Threshold      uint8
	Enhanced       *models.Gray
	Binary         *models.Binary
	Cleaned        *models.Binary
	SureBackground *models.Binary
	Labels         *models.LabelMap
	Record         *metrics.Record
	Elapsed        time.Duration
}

// Comparison holds the results of every strategy on the same source image.
type Comparison struct {
	Results []*Result
}

// ByStrategy returns the result for name, or nil.
func (c *Comparison) ByStrategy(name string) *Result {
	for _, r := range c.Results {
		if r.Strategy == name {
			return r
		}
	}
	return nil
}

// Analyzer wires the stages together according to a Config.
type Analyzer struct {
	enhancer    *filters.CLAHEFilter
	thresholder *threshold.OtsuThresholder
	invert      bool
	metricsOpts metrics.Options
	strategies  []Strategy
	logger      logger.Logger
}

// NewAnalyzer builds both strategies from cfg. A nil log discards output.
func NewAnalyzer(cfg *config.Config, log logger.Logger) (*Analyzer, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidParameter, err)
	}
	if log == nil {
		log = logger.NewNop()
	}

	enhancer, err := filters.NewCLAHEFilter(filters.CLAHEParams{
		Enabled:   cfg.Preprocess.Enabled,
		ClipLimit: cfg.Preprocess.ClipLimit,
		TileGrid:  cfg.Preprocess.TileGrid,
	})
	if err != nil {
		return nil, err
	}

	thresholder, err := threshold.NewOtsuThresholder(cfg.Threshold.BlurKernel)
	if err != nil {
		return nil, err
	}

	morph, err := filters.NewMorphologyFilter(cfg.Morphology.Shape)
	if err != nil {
		return nil, err
	}

	ws, err := segmentation.NewWatershedLabeler(cfg.Watershed.MinDistance, cfg.Watershed.ExcludeBorder)
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		enhancer:    enhancer,
		thresholder: thresholder,
		invert:      cfg.Threshold.Invert,
		metricsOpts: metrics.Options{
			ReferenceAreaMM2: cfg.Metrics.ReferenceAreaMM2,
			DarkThreshold:    uint8(cfg.Metrics.DarkThreshold),
		},
		strategies: []Strategy{
			NewOtsuStrategy(morph, cfg.Morphology.KernelSize, cfg.Morphology.CloseIterations),
			NewWatershedStrategy(morph, cfg.Morphology.KernelSize, cfg.Morphology.OpenIterations,
				cfg.Morphology.DilateIterations, ws),
		},
		logger: log,
	}, nil
}

// Strategies returns the configured strategies in reporting order.
func (a *Analyzer) Strategies() []Strategy {
	out := make([]Strategy, len(a.strategies))
	copy(out, a.strategies)
	return out
}

// Analyze runs a single strategy on gray.
func (a *Analyzer) Analyze(ctx context.Context, gray *models.Gray, strategy Strategy) (*Result, error) {
	start := time.Now()

	enhanced, binary, t, err := a.binarize(ctx, gray)
	if err != nil {
		return nil, err
	}

	return a.segment(ctx, gray, enhanced, binary, t, strategy, start)
}

// Compare runs every strategy on gray. Preprocessing and thresholding are
// shared; each strategy receives the same binary image and does not alter it.
func (a *Analyzer) Compare(ctx context.Context, gray *models.Gray) (*Comparison, error) {
	start := time.Now()

	enhanced, binary, t, err := a.binarize(ctx, gray)
	if err != nil {
		return nil, err
	}

	cmp := &Comparison{Results: make([]*Result, 0, len(a.strategies))}
	for _, s := range a.strategies {
		res, err := a.segment(ctx, gray, enhanced, binary, t, s, start)
		if err != nil {
			return nil, err
		}
		cmp.Results = append(cmp.Results, res)
		start = time.Now()
	}
	return cmp, nil
}

func (a *Analyzer) binarize(ctx context.Context, gray *models.Gray) (*models.Gray, *models.Binary, uint8, error) {
	if err := gray.Validate("analyze"); err != nil {
		return nil, nil, 0, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, 0, err
	}

	enhanced, err := a.enhancer.Enhance(gray)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("preprocessing failed: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, 0, err
	}

	binary, t, err := a.thresholder.Binarize(enhanced, a.invert)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("thresholding failed: %w", err)
	}

	a.logger.Debug(component, "threshold selected", map[string]interface{}{
		"threshold":  t,
		"invert":     a.invert,
		"foreground": binary.CountForeground(),
		"width":      gray.Width,
		"height":     gray.Height,
	})

	return enhanced, binary, t, nil
}

func (a *Analyzer) segment(ctx context.Context, gray, enhanced *models.Gray, binary *models.Binary, t uint8, s Strategy, start time.Time) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seg, err := s.Segment(binary)
	if err != nil {
		return nil, fmt.Errorf("%s segmentation failed: %w", s.Name(), err)
	}

	rec, err := metrics.NewRecord(s.Name(), gray, seg.Labels, a.metricsOpts)
	if err != nil {
		return nil, fmt.Errorf("%s metrics failed: %w", s.Name(), err)
	}

	res := &Result{
		Strategy:       s.Name(),
		Threshold:      t,
		Enhanced:       enhanced,
		Binary:         binary,
		Cleaned:        seg.Cleaned,
		SureBackground: seg.SureBackground,
		Labels:         seg.Labels,
		Record:         rec,
		Elapsed:        time.Since(start),
	}

	fields := map[string]interface{}{
		"strategy":    rec.Strategy,
		"grain_count": rec.GrainCount,
		"g_number":    rec.GNumber,
		"carbon":      rec.CarbonFraction,
		"elapsed":     res.Elapsed.String(),
	}
	if len(rec.Degenerate) > 0 {
		fields["degenerate"] = rec.Degenerate
		a.logger.Warning(component, "degenerate result", fields)
	} else {
		a.logger.Info(component, "segmentation completed", fields)
	}

	return res, nil
}
