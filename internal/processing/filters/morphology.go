package filters

import (
	"fmt"
	"image"

	"grainscope/internal/models"
	"grainscope/internal/opencv/conversion"
	"grainscope/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// MorphologyFilter applies binary cleanup with a flat structuring element.
// Every operation returns a new image; the input is never modified.
type MorphologyFilter struct {
	shape gocv.MorphShape
}

// Structuring element names accepted by NewMorphologyFilter.
const (
	ShapeRect    = "rect"
	ShapeCross   = "cross"
	ShapeEllipse = "ellipse"
)

var morphShapes = map[string]gocv.MorphShape{
	ShapeRect:    gocv.MorphRect,
	ShapeCross:   gocv.MorphCross,
	ShapeEllipse: gocv.MorphEllipse,
}

// NewMorphologyFilter builds a filter with the named structuring element.
// An empty name selects the square element.
func NewMorphologyFilter(shape string) (*MorphologyFilter, error) {
	if shape == "" {
		shape = ShapeRect
	}
	ms, ok := morphShapes[shape]
	if !ok {
		return nil, fmt.Errorf("%w: unknown structuring element %q", models.ErrInvalidParameter, shape)
	}
	return &MorphologyFilter{shape: ms}, nil
}

func (m *MorphologyFilter) Name() string {
	return "morphology_filter"
}

type morphStep int

const (
	stepDilate morphStep = iota
	stepErode
)

// Close fills dark holes inside grains: dilation repeated iterations times,
// then erosion repeated iterations times.
func (m *MorphologyFilter) Close(b *models.Binary, kernelSize, iterations int) (*models.Binary, error) {
	return m.run(b, kernelSize, iterations, "close", stepDilate, stepErode)
}

// Open removes isolated foreground speckle: erosion then dilation.
func (m *MorphologyFilter) Open(b *models.Binary, kernelSize, iterations int) (*models.Binary, error) {
	return m.run(b, kernelSize, iterations, "open", stepErode, stepDilate)
}

// Dilate grows the foreground, used to estimate a sure-background margin.
func (m *MorphologyFilter) Dilate(b *models.Binary, kernelSize, iterations int) (*models.Binary, error) {
	return m.run(b, kernelSize, iterations, "dilate", stepDilate)
}

func (m *MorphologyFilter) run(b *models.Binary, kernelSize, iterations int, op string, steps ...morphStep) (*models.Binary, error) {
	if err := b.Validate(op); err != nil {
		return nil, err
	}
	if err := validateKernel(kernelSize, iterations); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	current, err := conversion.BinaryToMat(b, op+"_src")
	if err != nil {
		return nil, fmt.Errorf("failed to create source Mat: %w", err)
	}
	defer func() { current.Close() }()

	kernel := gocv.GetStructuringElement(m.shape, image.Point{X: kernelSize, Y: kernelSize})
	defer kernel.Close()

	for _, step := range steps {
		for i := 0; i < iterations; i++ {
			next, err := safe.NewMat(current.Rows(), current.Cols(), current.Type(), op+"_step")
			if err != nil {
				return nil, fmt.Errorf("failed to create %s Mat: %w", op, err)
			}
			switch step {
			case stepDilate:
				gocv.Dilate(current.GetMat(), next.Ptr(), kernel)
			case stepErode:
				gocv.Erode(current.GetMat(), next.Ptr(), kernel)
			}
			current.Close()
			current = next
		}
	}

	return conversion.MatToBinary(current)
}

func validateKernel(kernelSize, iterations int) error {
	if kernelSize < 1 || kernelSize%2 == 0 {
		return fmt.Errorf("%w: kernel size must be a positive odd number, got: %d", models.ErrInvalidParameter, kernelSize)
	}
	if iterations < 1 {
		return fmt.Errorf("%w: iterations must be at least 1, got: %d", models.ErrInvalidParameter, iterations)
	}
	return nil
}
