// Package segmentation turns a cleaned binary image into a label map. The two
// strategies, connected components and marker-controlled watershed, are
// interchangeable behind Labeler.
package segmentation

import (
	"grainscope/internal/models"
)

// Labeler partitions the foreground of a binary image into grains.
type Labeler interface {
	Name() string
	Label(b *models.Binary) (*models.LabelMap, error)
}

var (
	_ Labeler = (*ComponentLabeler)(nil)
	_ Labeler = (*WatershedLabeler)(nil)
)
