package segmentation

import (
	"fmt"

	"grainscope/internal/models"
	"grainscope/internal/opencv/conversion"
	"grainscope/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// DistanceMap holds, for every pixel, the Euclidean distance to the nearest
// background pixel. Background pixels are 0.
type DistanceMap struct {
	Width  int
	Height int
	Values []float32
}

// At returns the distance at column x, row y.
func (d *DistanceMap) At(x, y int) float32 {
	return d.Values[y*d.Width+x]
}

// Max returns the largest distance in the map.
func (d *DistanceMap) Max() float32 {
	var m float32
	for _, v := range d.Values {
		if v > m {
			m = v
		}
	}
	return m
}

// DistanceTransform computes the L2 distance map of the foreground.
func DistanceTransform(b *models.Binary) (*DistanceMap, error) {
	if err := b.Validate("distance transform"); err != nil {
		return nil, err
	}

	src, err := conversion.BinaryToMat(b, "distance_src")
	if err != nil {
		return nil, fmt.Errorf("failed to create source Mat: %w", err)
	}
	defer src.Close()

	dst, err := safe.NewMat(src.Rows(), src.Cols(), gocv.MatTypeCV32F, "distance_dst")
	if err != nil {
		return nil, fmt.Errorf("failed to create distance Mat: %w", err)
	}
	defer dst.Close()

	labels := gocv.NewMat()
	defer labels.Close()

	gocv.DistanceTransform(src.GetMat(), dst.Ptr(), &labels, gocv.DistL2, gocv.DistanceMask5, gocv.DistanceLabelCComp)

	values, err := conversion.MatToFloats(dst)
	if err != nil {
		return nil, fmt.Errorf("distance conversion failed: %w", err)
	}
	return &DistanceMap{Width: b.Width, Height: b.Height, Values: values}, nil
}
