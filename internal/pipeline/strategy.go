package pipeline

import (
	"fmt"

	"grainscope/internal/models"
	"grainscope/internal/processing/filters"
	"grainscope/internal/segmentation"
)

// Segmentation holds the intermediates of one strategy run.
type Segmentation struct {
	// Cleaned is the binary image handed to the labeler.
	Cleaned *models.Binary
	// SureBackground is the dilated foreground margin; nil when the strategy
	// does not compute one.
	SureBackground *models.Binary
	Labels         *models.LabelMap
}

// Strategy turns a thresholded binary image into grains. Implementations
// allocate fresh buffers and never modify binary.
type Strategy interface {
	Name() string
	Segment(binary *models.Binary) (*Segmentation, error)
}

// OtsuStrategy closes holes inside grains and labels connected components.
type OtsuStrategy struct {
	morph      *filters.MorphologyFilter
	kernelSize int
	iterations int
	labeler    *segmentation.ComponentLabeler
}

func NewOtsuStrategy(morph *filters.MorphologyFilter, kernelSize, closeIterations int) *OtsuStrategy {
	return &OtsuStrategy{
		morph:      morph,
		kernelSize: kernelSize,
		iterations: closeIterations,
		labeler:    segmentation.NewComponentLabeler(),
	}
}

func (s *OtsuStrategy) Name() string {
	return s.labeler.Name()
}

func (s *OtsuStrategy) Segment(binary *models.Binary) (*Segmentation, error) {
	closed, err := s.morph.Close(binary, s.kernelSize, s.iterations)
	if err != nil {
		return nil, fmt.Errorf("closing failed: %w", err)
	}

	labels, err := s.labeler.Label(closed)
	if err != nil {
		return nil, fmt.Errorf("component labeling failed: %w", err)
	}

	return &Segmentation{Cleaned: closed, Labels: labels}, nil
}

// WatershedStrategy opens away speckle, estimates the sure background, and
// floods the distance transform from its peaks.
type WatershedStrategy struct {
	morph            *filters.MorphologyFilter
	kernelSize       int
	openIterations   int
	dilateIterations int
	labeler          *segmentation.WatershedLabeler
}

func NewWatershedStrategy(morph *filters.MorphologyFilter, kernelSize, openIterations, dilateIterations int, labeler *segmentation.WatershedLabeler) *WatershedStrategy {
	return &WatershedStrategy{
		morph:            morph,
		kernelSize:       kernelSize,
		openIterations:   openIterations,
		dilateIterations: dilateIterations,
		labeler:          labeler,
	}
}

func (s *WatershedStrategy) Name() string {
	return s.labeler.Name()
}

func (s *WatershedStrategy) Segment(binary *models.Binary) (*Segmentation, error) {
	opened, err := s.morph.Open(binary, s.kernelSize, s.openIterations)
	if err != nil {
		return nil, fmt.Errorf("opening failed: %w", err)
	}

	sureBackground, err := s.morph.Dilate(opened, s.kernelSize, s.dilateIterations)
	if err != nil {
		return nil, fmt.Errorf("sure background dilation failed: %w", err)
	}

	labels, err := s.labeler.Label(opened)
	if err != nil {
		return nil, fmt.Errorf("watershed labeling failed: %w", err)
	}

	return &Segmentation{Cleaned: opened, SureBackground: sureBackground, Labels: labels}, nil
}
