package metrics

import (
	"fmt"

	"grainscope/internal/models"
)

// Degeneracy names a condition under which a record holds sentinel values.
type Degeneracy string

const (
	// NoGrains means the label map held no non-zero label.
	NoGrains Degeneracy = "no-grains"
	// NoScale means the reference area was not positive.
	NoScale Degeneracy = "no-scale"
)

// Record is the outcome of one strategy on one image. It is built once by
// NewRecord and not modified afterwards.
type Record struct {
	Strategy       string       `json:"strategy"`
	GrainCount     int          `json:"grain_count"`
	GrainAreas     []int        `json:"grain_areas"`
	GNumber        float64      `json:"g_number"`
	CarbonFraction float64      `json:"carbon_fraction"`
	DarkRatio      float64      `json:"dark_ratio"`
	Areas          AreaSummary  `json:"area_summary"`
	Degenerate     []Degeneracy `json:"degenerate,omitempty"`
}

// Options holds the physical calibration and the carbon model threshold.
type Options struct {
	ReferenceAreaMM2 float64
	DarkThreshold    uint8
}

// NewRecord derives every metric for labels computed from gray.
func NewRecord(strategy string, gray *models.Gray, labels *models.LabelMap, opts Options) (*Record, error) {
	if err := gray.Validate("metrics record"); err != nil {
		return nil, err
	}
	if err := labels.Validate("metrics record"); err != nil {
		return nil, err
	}
	if err := models.SameSize(gray.Width, gray.Height, labels.Width, labels.Height, "metrics record"); err != nil {
		return nil, err
	}

	count, areas, err := CountAndAreas(labels)
	if err != nil {
		return nil, fmt.Errorf("grain count failed: %w", err)
	}

	carbon, ratio, err := CarbonFraction(gray, opts.DarkThreshold)
	if err != nil {
		return nil, fmt.Errorf("carbon estimate failed: %w", err)
	}

	rec := &Record{
		Strategy:       strategy,
		GrainCount:     count,
		GrainAreas:     areas,
		GNumber:        GrainSizeNumber(count, opts.ReferenceAreaMM2),
		CarbonFraction: carbon,
		DarkRatio:      ratio,
		Areas:          Summarize(areas),
	}
	if count == 0 {
		rec.Degenerate = append(rec.Degenerate, NoGrains)
	}
	if opts.ReferenceAreaMM2 <= 0 {
		rec.Degenerate = append(rec.Degenerate, NoScale)
	}
	return rec, nil
}

// GNumberDefined reports whether GNumber is a real grain-size number rather
// than the 0 sentinel.
func (r *Record) GNumberDefined() bool {
	return len(r.Degenerate) == 0
}
