package filters

import (
	"fmt"
	"image"

	"grainscope/internal/models"
	"grainscope/internal/opencv/conversion"
	"grainscope/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// GaussianFilter smooths speckle before a histogram is taken. A zero sigma
// lets OpenCV derive it from the kernel size.
type GaussianFilter struct {
	kernelSize int
	sigma      float64
}

func NewGaussianFilter(kernelSize int, sigma float64) (*GaussianFilter, error) {
	if kernelSize < 1 || kernelSize%2 == 0 {
		return nil, fmt.Errorf("%w: gaussian kernel size must be a positive odd number, got: %d",
			models.ErrInvalidParameter, kernelSize)
	}
	if sigma < 0 {
		return nil, fmt.Errorf("%w: gaussian sigma must not be negative, got: %f", models.ErrInvalidParameter, sigma)
	}
	return &GaussianFilter{kernelSize: kernelSize, sigma: sigma}, nil
}

func (g *GaussianFilter) Name() string {
	return "gaussian_filter"
}

func (g *GaussianFilter) Apply(img *models.Gray) (*models.Gray, error) {
	if err := img.Validate(g.Name()); err != nil {
		return nil, err
	}
	if g.kernelSize == 1 {
		return img.Clone(), nil
	}

	src, err := conversion.GrayToMat(img, "gaussian_src")
	if err != nil {
		return nil, fmt.Errorf("failed to create source Mat: %w", err)
	}
	defer src.Close()

	dst, err := safe.NewMat(src.Rows(), src.Cols(), src.Type(), "gaussian_dst")
	if err != nil {
		return nil, fmt.Errorf("failed to create destination Mat: %w", err)
	}
	defer dst.Close()

	gocv.GaussianBlur(src.GetMat(), dst.Ptr(), image.Point{X: g.kernelSize, Y: g.kernelSize},
		g.sigma, g.sigma, gocv.BorderDefault)

	return conversion.MatToGray(dst)
}
