// Package overlay renders segmentation results on top of the source image
// for inspection.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"grainscope/internal/models"
	"grainscope/internal/opencv/conversion"
	"grainscope/internal/opencv/safe"

	"github.com/lucasb-eyer/go-colorful"
	"gocv.io/x/gocv"
)

// Label overlays keep 70% of the source image.
const (
	labelImageWeight = 0.7
	labelColorWeight = 0.3
	maxHue           = 179
)

// Mask alpha-blends c onto every pixel set in mask. alpha 1 replaces those
// pixels outright; pixels outside the mask are returned unchanged.
func Mask(img *models.RGB, mask *models.Binary, c color.RGBA, alpha float64) (*models.RGB, error) {
	if err := img.Validate("overlay mask"); err != nil {
		return nil, err
	}
	if err := mask.Validate("overlay mask"); err != nil {
		return nil, err
	}
	if err := models.SameSize(img.Width, img.Height, mask.Width, mask.Height, "overlay mask"); err != nil {
		return nil, err
	}
	if alpha < 0 || alpha > 1 {
		return nil, fmt.Errorf("%w: alpha must be within [0, 1], got: %f", models.ErrInvalidParameter, alpha)
	}

	painted := &models.RGB{Width: img.Width, Height: img.Height, Pix: make([]uint8, len(img.Pix))}
	copy(painted.Pix, img.Pix)
	for i, v := range mask.Pix {
		if v == models.Background {
			continue
		}
		painted.Pix[i*3], painted.Pix[i*3+1], painted.Pix[i*3+2] = c.R, c.G, c.B
	}

	// Unmasked pixels are identical in both inputs, so a global blend leaves them intact.
	return blend(painted, alpha, img, 1-alpha)
}

// Labels colors each grain by hue = 179*label/max(label) on the OpenCV hue
// scale at full saturation and value, zeroes background, and blends the
// result 30% over the image. Nearby ids may share a hue.
func Labels(img *models.RGB, labels *models.LabelMap) (*models.RGB, error) {
	if err := img.Validate("overlay labels"); err != nil {
		return nil, err
	}
	if err := labels.Validate("overlay labels"); err != nil {
		return nil, err
	}
	if err := models.SameSize(img.Width, img.Height, labels.Width, labels.Height, "overlay labels"); err != nil {
		return nil, err
	}

	colored := &models.RGB{Width: img.Width, Height: img.Height, Pix: make([]uint8, len(img.Pix))}
	if maxLabel := labels.Max(); maxLabel > 0 {
		palette := make(map[int32][3]uint8)
		for i, l := range labels.Labels {
			if l <= 0 {
				continue
			}
			rgb, ok := palette[l]
			if !ok {
				rgb = HueColor(uint8(maxHue * float64(l) / float64(maxLabel)))
				palette[l] = rgb
			}
			colored.Pix[i*3], colored.Pix[i*3+1], colored.Pix[i*3+2] = rgb[0], rgb[1], rgb[2]
		}
	}

	return blend(img, labelImageWeight, colored, labelColorWeight)
}

// HueColor converts an OpenCV hue (0..179, two degrees per step) at full
// saturation and value into RGB.
func HueColor(hue uint8) [3]uint8 {
	r, g, b := colorful.Hsv(float64(hue)*2, 1, 1).RGB255()
	return [3]uint8{r, g, b}
}

// blend returns a*alpha + b*beta, rounded and saturated per channel.
func blend(a *models.RGB, alpha float64, b *models.RGB, beta float64) (*models.RGB, error) {
	src1, err := conversion.RGBToMat(a, "blend_src1")
	if err != nil {
		return nil, fmt.Errorf("failed to create source Mat: %w", err)
	}
	defer src1.Close()

	src2, err := conversion.RGBToMat(b, "blend_src2")
	if err != nil {
		return nil, fmt.Errorf("failed to create source Mat: %w", err)
	}
	defer src2.Close()

	dst, err := safe.NewMat(src1.Rows(), src1.Cols(), gocv.MatTypeCV8UC3, "blend_dst")
	if err != nil {
		return nil, fmt.Errorf("failed to create destination Mat: %w", err)
	}
	defer dst.Close()

	gocv.AddWeighted(src1.GetMat(), alpha, src2.GetMat(), beta, 0, dst.Ptr())

	return conversion.MatToRGB(dst)
}

// Boundaries marks thick grain boundaries: a pixel is set when its 3x3 cross
// neighbourhood contains more than one label, background included.
func Boundaries(labels *models.LabelMap) (*models.Binary, error) {
	if err := labels.Validate("boundaries"); err != nil {
		return nil, err
	}

	src, err := conversion.LabelsToFloatMat(labels, "boundaries_src")
	if err != nil {
		return nil, fmt.Errorf("failed to create label Mat: %w", err)
	}
	defer src.Close()

	hi, err := safe.NewMat(src.Rows(), src.Cols(), gocv.MatTypeCV32F, "boundaries_max")
	if err != nil {
		return nil, fmt.Errorf("failed to create dilation Mat: %w", err)
	}
	defer hi.Close()

	lo, err := safe.NewMat(src.Rows(), src.Cols(), gocv.MatTypeCV32F, "boundaries_min")
	if err != nil {
		return nil, fmt.Errorf("failed to create erosion Mat: %w", err)
	}
	defer lo.Close()

	kernel := gocv.GetStructuringElement(gocv.MorphCross, image.Point{X: 3, Y: 3})
	defer kernel.Close()

	gocv.Dilate(src.GetMat(), hi.Ptr(), kernel)
	gocv.Erode(src.GetMat(), lo.Ptr(), kernel)

	maxima, err := conversion.MatToFloats(hi)
	if err != nil {
		return nil, err
	}
	minima, err := conversion.MatToFloats(lo)
	if err != nil {
		return nil, err
	}

	out := &models.Binary{Width: labels.Width, Height: labels.Height, Pix: make([]uint8, len(labels.Labels))}
	for i := range out.Pix {
		if maxima[i] != minima[i] {
			out.Pix[i] = models.Foreground
		}
	}
	return out, nil
}

// BoundaryOverlay paints the thick boundaries of labels onto img in c.
func BoundaryOverlay(img *models.RGB, labels *models.LabelMap, c color.RGBA) (*models.RGB, error) {
	bounds, err := Boundaries(labels)
	if err != nil {
		return nil, fmt.Errorf("boundary extraction failed: %w", err)
	}
	return Mask(img, bounds, c, 1.0)
}
