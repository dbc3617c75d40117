package metrics

import (
	"fmt"

	"grainscope/internal/models"
	"grainscope/internal/opencv/conversion"
	"grainscope/internal/opencv/safe"

	"gocv.io/x/gocv"
)

const (
	// DefaultDarkThreshold separates pearlite-like pixels from ferrite.
	DefaultDarkThreshold = 100
	// EutectoidCarbon is the carbon percentage of fully pearlitic steel.
	EutectoidCarbon = 0.77
)

// CarbonFraction estimates carbon content from the share of pixels darker than
// darkThreshold. The threshold is fixed and unrelated to the Otsu threshold
// used for segmentation. It returns the carbon estimate and the dark ratio.
func CarbonFraction(img *models.Gray, darkThreshold uint8) (float64, float64, error) {
	if err := img.Validate("carbon fraction"); err != nil {
		return 0, 0, err
	}
	if darkThreshold == 0 {
		return 0, 0, nil
	}

	src, err := conversion.GrayToMat(img, "carbon_src")
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create source Mat: %w", err)
	}
	defer src.Close()

	dark, err := safe.NewMat(src.Rows(), src.Cols(), src.Type(), "carbon_dark")
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create mask Mat: %w", err)
	}
	defer dark.Close()

	// Inverse binary keeps pixels <= thresh, so thresh-1 keeps pixels < darkThreshold.
	gocv.Threshold(src.GetMat(), dark.Ptr(), float32(darkThreshold)-1, 255, gocv.ThresholdBinaryInv)

	darkPixels := gocv.CountNonZero(dark.GetMat())
	ratio := float64(darkPixels) / float64(len(img.Pix))

	return ratio * EutectoidCarbon, ratio, nil
}
