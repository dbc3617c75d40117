package segmentation

import (
	"fmt"

	"grainscope/internal/models"
)

// DefaultMinDistance is the default peak separation for watershed seeding.
const DefaultMinDistance = 10

// WatershedLabeler splits touching grains by flooding the negated distance
// transform from its local maxima.
type WatershedLabeler struct {
	opts PeakOptions
}

// NewWatershedLabeler seeds one basin per distance peak at least minDistance
// apart. Larger values merge grains; smaller values split them.
func NewWatershedLabeler(minDistance int, excludeBorder bool) (*WatershedLabeler, error) {
	if minDistance < 1 {
		return nil, fmt.Errorf("%w: min distance must be at least 1, got: %d", models.ErrInvalidParameter, minDistance)
	}
	return &WatershedLabeler{opts: PeakOptions{MinDistance: minDistance, ExcludeBorder: excludeBorder}}, nil
}

func (w *WatershedLabeler) Name() string {
	return "watershed"
}

// MinDistance returns the configured peak separation.
func (w *WatershedLabeler) MinDistance() int {
	return w.opts.MinDistance
}

// Label floods the opened foreground. An image without peaks, including an
// empty foreground, yields an all-zero map.
func (w *WatershedLabeler) Label(opened *models.Binary) (*models.LabelMap, error) {
	dist, err := DistanceTransform(opened)
	if err != nil {
		return nil, fmt.Errorf("distance transform failed: %w", err)
	}
	return w.LabelDistance(opened, dist)
}

// LabelDistance runs seeding and flooding over a precomputed distance map.
func (w *WatershedLabeler) LabelDistance(opened *models.Binary, dist *DistanceMap) (*models.LabelMap, error) {
	if err := opened.Validate("watershed"); err != nil {
		return nil, err
	}
	if dist.Max() <= 0 {
		return models.NewLabelMap(opened.Width, opened.Height)
	}

	peaks, err := FindPeaks(dist, opened, w.opts)
	if err != nil {
		return nil, fmt.Errorf("peak extraction failed: %w", err)
	}
	if len(peaks) == 0 {
		return models.NewLabelMap(opened.Width, opened.Height)
	}

	markers, err := labelSeeds(peaks, opened.Width, opened.Height)
	if err != nil {
		return nil, fmt.Errorf("marker labeling failed: %w", err)
	}

	elevation := make([]float32, len(dist.Values))
	for i, v := range dist.Values {
		elevation[i] = -v
	}

	return priorityFlood(elevation, markers, opened), nil
}

// labelSeeds gives every connected group of seed pixels its own marker id.
func labelSeeds(peaks []Peak, width, height int) (*models.LabelMap, error) {
	seeds, err := models.NewBinary(width, height)
	if err != nil {
		return nil, err
	}
	for _, p := range peaks {
		seeds.SetForeground(p.X, p.Y)
	}
	markers, _, err := NewComponentLabeler().Components(seeds)
	return markers, err
}
