package segmentation

import (
	"fmt"

	"grainscope/internal/models"
	"grainscope/internal/opencv/conversion"
	"grainscope/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// ComponentLabeler assigns one label per 8-connected foreground blob.
// Labels are 1..count in raster scan order of each blob's first pixel, so
// identical input always yields identical ids.
type ComponentLabeler struct{}

func NewComponentLabeler() *ComponentLabeler {
	return &ComponentLabeler{}
}

func (c *ComponentLabeler) Name() string {
	return "otsu"
}

func (c *ComponentLabeler) Label(b *models.Binary) (*models.LabelMap, error) {
	labels, _, err := c.Components(b)
	return labels, err
}

// Components returns the label map and the number of grains. A binary image
// without foreground yields count 0 and an all-zero map; that is not an error.
func (c *ComponentLabeler) Components(b *models.Binary) (*models.LabelMap, int, error) {
	if err := b.Validate("connected components"); err != nil {
		return nil, 0, err
	}

	src, err := conversion.BinaryToMat(b, "components_src")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create source Mat: %w", err)
	}
	defer src.Close()

	dst, err := safe.NewMat(src.Rows(), src.Cols(), gocv.MatTypeCV32S, "components_labels")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create label Mat: %w", err)
	}
	defer dst.Close()

	n := gocv.ConnectedComponents(src.GetMat(), dst.Ptr())

	labels, err := conversion.MatToLabels(dst)
	if err != nil {
		return nil, 0, fmt.Errorf("label conversion failed: %w", err)
	}

	// OpenCV counts the background as a component.
	count := n - 1
	if count < 0 {
		count = 0
	}
	return labels, count, nil
}
