package filters

import (
	"fmt"
	"image"

	"grainscope/internal/models"
	"grainscope/internal/opencv/conversion"
	"grainscope/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// CLAHEParams configures local histogram equalization.
type CLAHEParams struct {
	Enabled   bool
	ClipLimit float64
	TileGrid  int
}

// DefaultCLAHEParams returns clip limit 2.0 over an 8x8 tile grid.
func DefaultCLAHEParams() CLAHEParams {
	return CLAHEParams{Enabled: true, ClipLimit: 2.0, TileGrid: 8}
}

// CLAHEFilter compensates uneven illumination before thresholding.
type CLAHEFilter struct {
	params CLAHEParams
}

func NewCLAHEFilter(params CLAHEParams) (*CLAHEFilter, error) {
	if params.ClipLimit <= 0 {
		return nil, fmt.Errorf("%w: clahe clip limit must be positive, got: %f", models.ErrInvalidParameter, params.ClipLimit)
	}
	if params.TileGrid < 1 {
		return nil, fmt.Errorf("%w: clahe tile grid must be at least 1, got: %d", models.ErrInvalidParameter, params.TileGrid)
	}
	return &CLAHEFilter{params: params}, nil
}

func (c *CLAHEFilter) Name() string {
	return "clahe_filter"
}

func (c *CLAHEFilter) ShouldExecute() bool {
	return c.params.Enabled
}

// Enhance returns a contrast-enhanced copy of img, or a plain copy when the
// filter is disabled.
func (c *CLAHEFilter) Enhance(img *models.Gray) (*models.Gray, error) {
	if err := img.Validate(c.Name()); err != nil {
		return nil, err
	}
	if !c.ShouldExecute() {
		return img.Clone(), nil
	}

	src, err := conversion.GrayToMat(img, "clahe_src")
	if err != nil {
		return nil, fmt.Errorf("failed to create source Mat: %w", err)
	}
	defer src.Close()

	dst, err := safe.NewMat(src.Rows(), src.Cols(), src.Type(), "clahe_dst")
	if err != nil {
		return nil, fmt.Errorf("failed to create destination Mat: %w", err)
	}
	defer dst.Close()

	clahe := gocv.NewCLAHEWithParams(c.params.ClipLimit, image.Point{X: c.params.TileGrid, Y: c.params.TileGrid})
	defer clahe.Close()

	clahe.Apply(src.GetMat(), dst.Ptr())

	return conversion.MatToGray(dst)
}
