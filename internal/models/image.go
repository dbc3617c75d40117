package models

import (
	"errors"
	"fmt"
)

// Pixel values used by every binary image in the pipeline.
const (
	Background uint8 = 0
	Foreground uint8 = 255
)

var (
	// ErrInvalidImage is returned for nil, empty, zero-dimension or mismatched input.
	ErrInvalidImage = errors.New("invalid image")
	// ErrInvalidParameter is returned for out-of-range stage parameters.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Gray is an 8-bit single channel intensity image stored row-major.
type Gray struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewGray allocates a zeroed intensity image.
func NewGray(width, height int) (*Gray, error) {
	if err := ValidateDimensions(width, height, "gray allocation"); err != nil {
		return nil, err
	}
	return &Gray{Width: width, Height: height, Pix: make([]uint8, width*height)}, nil
}

// GrayFromPix wraps a copy of pix as an intensity image.
func GrayFromPix(width, height int, pix []uint8) (*Gray, error) {
	if err := ValidateDimensions(width, height, "gray construction"); err != nil {
		return nil, err
	}
	if len(pix) != width*height {
		return nil, fmt.Errorf("%w: %d samples for %dx%d", ErrInvalidImage, len(pix), width, height)
	}
	out := make([]uint8, len(pix))
	copy(out, pix)
	return &Gray{Width: width, Height: height, Pix: out}, nil
}

// At returns the intensity at column x, row y.
func (g *Gray) At(x, y int) uint8 {
	return g.Pix[y*g.Width+x]
}

// Set stores an intensity at column x, row y.
func (g *Gray) Set(x, y int, v uint8) {
	g.Pix[y*g.Width+x] = v
}

// Clone returns a deep copy.
func (g *Gray) Clone() *Gray {
	out := make([]uint8, len(g.Pix))
	copy(out, g.Pix)
	return &Gray{Width: g.Width, Height: g.Height, Pix: out}
}

// Validate reports ErrInvalidImage when g cannot be processed.
func (g *Gray) Validate(operation string) error {
	if g == nil {
		return fmt.Errorf("%w: nil image for operation: %s", ErrInvalidImage, operation)
	}
	if err := ValidateDimensions(g.Width, g.Height, operation); err != nil {
		return err
	}
	if len(g.Pix) != g.Width*g.Height {
		return fmt.Errorf("%w: %d samples for %dx%d in operation: %s",
			ErrInvalidImage, len(g.Pix), g.Width, g.Height, operation)
	}
	return nil
}

// Binary is a two-valued image holding Background or Foreground per pixel.
type Binary struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewBinary allocates an all-background binary image.
func NewBinary(width, height int) (*Binary, error) {
	if err := ValidateDimensions(width, height, "binary allocation"); err != nil {
		return nil, err
	}
	return &Binary{Width: width, Height: height, Pix: make([]uint8, width*height)}, nil
}

// IsForeground reports whether the pixel at column x, row y is set.
func (b *Binary) IsForeground(x, y int) bool {
	return b.Pix[y*b.Width+x] != Background
}

// SetForeground marks the pixel at column x, row y.
func (b *Binary) SetForeground(x, y int) {
	b.Pix[y*b.Width+x] = Foreground
}

// CountForeground returns the number of set pixels.
func (b *Binary) CountForeground() int {
	n := 0
	for _, v := range b.Pix {
		if v != Background {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (b *Binary) Clone() *Binary {
	out := make([]uint8, len(b.Pix))
	copy(out, b.Pix)
	return &Binary{Width: b.Width, Height: b.Height, Pix: out}
}

// Validate reports ErrInvalidImage when b cannot be processed.
func (b *Binary) Validate(operation string) error {
	if b == nil {
		return fmt.Errorf("%w: nil binary image for operation: %s", ErrInvalidImage, operation)
	}
	if err := ValidateDimensions(b.Width, b.Height, operation); err != nil {
		return err
	}
	if len(b.Pix) != b.Width*b.Height {
		return fmt.Errorf("%w: %d samples for %dx%d in operation: %s",
			ErrInvalidImage, len(b.Pix), b.Width, b.Height, operation)
	}
	return nil
}

// LabelMap assigns each pixel a grain id. Label 0 is background or unassigned.
type LabelMap struct {
	Width  int
	Height int
	Labels []int32
}

// NewLabelMap allocates an all-background label map.
func NewLabelMap(width, height int) (*LabelMap, error) {
	if err := ValidateDimensions(width, height, "label map allocation"); err != nil {
		return nil, err
	}
	return &LabelMap{Width: width, Height: height, Labels: make([]int32, width*height)}, nil
}

// At returns the label at column x, row y.
func (l *LabelMap) At(x, y int) int32 {
	return l.Labels[y*l.Width+x]
}

// Max returns the largest label present, 0 for an empty map.
func (l *LabelMap) Max() int32 {
	var m int32
	for _, v := range l.Labels {
		if v > m {
			m = v
		}
	}
	return m
}

// Validate reports ErrInvalidImage when l cannot be processed.
func (l *LabelMap) Validate(operation string) error {
	if l == nil {
		return fmt.Errorf("%w: nil label map for operation: %s", ErrInvalidImage, operation)
	}
	if err := ValidateDimensions(l.Width, l.Height, operation); err != nil {
		return err
	}
	if len(l.Labels) != l.Width*l.Height {
		return fmt.Errorf("%w: %d labels for %dx%d in operation: %s",
			ErrInvalidImage, len(l.Labels), l.Width, l.Height, operation)
	}
	for i, v := range l.Labels {
		if v < 0 {
			return fmt.Errorf("%w: negative label %d at (%d, %d) for operation: %s",
				ErrInvalidImage, v, i%l.Width, i/l.Width, operation)
		}
	}
	return nil
}

// RGB is an 8-bit three channel image, interleaved R,G,B, row-major.
type RGB struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewRGB allocates a black color image.
func NewRGB(width, height int) (*RGB, error) {
	if err := ValidateDimensions(width, height, "rgb allocation"); err != nil {
		return nil, err
	}
	return &RGB{Width: width, Height: height, Pix: make([]uint8, width*height*3)}, nil
}

// At returns the channels at column x, row y.
func (c *RGB) At(x, y int) (r, g, b uint8) {
	i := (y*c.Width + x) * 3
	return c.Pix[i], c.Pix[i+1], c.Pix[i+2]
}

// Validate reports ErrInvalidImage when c cannot be processed.
func (c *RGB) Validate(operation string) error {
	if c == nil {
		return fmt.Errorf("%w: nil color image for operation: %s", ErrInvalidImage, operation)
	}
	if err := ValidateDimensions(c.Width, c.Height, operation); err != nil {
		return err
	}
	if len(c.Pix) != c.Width*c.Height*3 {
		return fmt.Errorf("%w: %d samples for %dx%dx3 in operation: %s",
			ErrInvalidImage, len(c.Pix), c.Width, c.Height, operation)
	}
	return nil
}

// ValidateDimensions rejects non-positive or oversized dimensions.
func ValidateDimensions(width, height int, operation string) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d for operation: %s", ErrInvalidImage, width, height, operation)
	}
	if width > 32768 || height > 32768 {
		return fmt.Errorf("%w: dimensions %dx%d exceed maximum size for operation: %s",
			ErrInvalidImage, width, height, operation)
	}
	return nil
}

// SameSize reports ErrInvalidImage unless both dimension pairs match.
func SameSize(w1, h1, w2, h2 int, operation string) error {
	if w1 != w2 || h1 != h2 {
		return fmt.Errorf("%w: dimension mismatch %dx%d vs %dx%d for operation: %s",
			ErrInvalidImage, w1, h1, w2, h2, operation)
	}
	return nil
}
