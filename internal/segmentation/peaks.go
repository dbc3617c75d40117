package segmentation

import (
	"fmt"
	"image"
	"sort"

	"grainscope/internal/models"
	"grainscope/internal/opencv/conversion"
	"grainscope/internal/opencv/safe"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// Peak is a local maximum of a distance map.
type Peak struct {
	X, Y  int
	Value float32
}

// PeakOptions controls local maximum extraction.
type PeakOptions struct {
	// MinDistance is the smallest allowed Chebyshev separation between two
	// peaks minus one, and the half-width of the maximum filter.
	MinDistance int
	// ExcludeBorder drops peaks closer than MinDistance to the image edge.
	ExcludeBorder bool
}

// FindPeaks returns local maxima of dist restricted to the foreground of mask.
// A candidate must be strictly positive and equal to the maximum of its
// (2*MinDistance+1) square window. Candidates are visited from the highest
// value down, ties in raster order, and kept only when farther than
// MinDistance from every peak already kept.
func FindPeaks(dist *DistanceMap, mask *models.Binary, opts PeakOptions) ([]Peak, error) {
	if err := mask.Validate("find peaks"); err != nil {
		return nil, err
	}
	if err := models.SameSize(dist.Width, dist.Height, mask.Width, mask.Height, "find peaks"); err != nil {
		return nil, err
	}
	if opts.MinDistance < 1 {
		return nil, fmt.Errorf("%w: min distance must be at least 1, got: %d", models.ErrInvalidParameter, opts.MinDistance)
	}

	maxima, err := maximumFilter(dist, opts.MinDistance)
	if err != nil {
		return nil, err
	}

	w, h := dist.Width, dist.Height
	border := 0
	if opts.ExcludeBorder {
		border = opts.MinDistance
	}

	var candidates []Peak
	for y := border; y < h-border; y++ {
		for x := border; x < w-border; x++ {
			i := y*w + x
			v := dist.Values[i]
			if v <= 0 || mask.Pix[i] == models.Background {
				continue
			}
			if v == maxima[i] {
				candidates = append(candidates, Peak{X: x, Y: y, Value: v})
			}
		}
	}

	// Raster order is already established; a stable sort keeps it for ties.
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].Value > candidates[b].Value
	})

	peaks := make([]Peak, 0, len(candidates))
	kept := &kdtree.Tree{}
	limit := float64(opts.MinDistance * opts.MinDistance)
	for _, c := range candidates {
		p := seedPoint{x: c.X, y: c.Y}
		if kept.Root != nil {
			if _, d := kept.Nearest(p); d <= limit {
				continue
			}
		}
		kept.Insert(p, false)
		peaks = append(peaks, c)
	}
	return peaks, nil
}

// seedPoint places an accepted peak in a kd-tree under the Chebyshev metric.
type seedPoint struct {
	x, y int
}

func (p seedPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(seedPoint)
	switch d {
	case 0:
		return float64(p.x - q.x)
	case 1:
		return float64(p.y - q.y)
	default:
		panic("illegal dimension")
	}
}

func (p seedPoint) Dims() int { return 2 }

// Distance returns the squared Chebyshev distance. It is never smaller than
// the squared per-axis difference, which keeps the tree's pruning exact.
func (p seedPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(seedPoint)
	d := float64(chebyshev(p.x-q.x, p.y-q.y))
	return d * d
}

func chebyshev(dx, dy int) int {
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// maximumFilter dilates the distance map with a square window of half-width radius.
func maximumFilter(dist *DistanceMap, radius int) ([]float32, error) {
	src, err := conversion.FloatsToMat(dist.Values, dist.Height, dist.Width, "peaks_src")
	if err != nil {
		return nil, fmt.Errorf("failed to create distance Mat: %w", err)
	}
	defer src.Close()

	dst, err := safe.NewMat(src.Rows(), src.Cols(), gocv.MatTypeCV32F, "peaks_max")
	if err != nil {
		return nil, fmt.Errorf("failed to create maximum Mat: %w", err)
	}
	defer dst.Close()

	size := 2*radius + 1
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: size, Y: size})
	defer kernel.Close()

	gocv.Dilate(src.GetMat(), dst.Ptr(), kernel)

	return conversion.MatToFloats(dst)
}
