package threshold

import (
	"fmt"

	"grainscope/internal/models"
	"grainscope/internal/processing/filters"
	"grainscope/internal/processing/histogram"
)

// DefaultBlurKernel is the Gaussian kernel applied before the histogram is built.
const DefaultBlurKernel = 5

// OtsuThresholder binarizes an image at the global threshold that maximizes
// between-class variance.
type OtsuThresholder struct {
	blur *filters.GaussianFilter
}

// NewOtsuThresholder blurs with a blurKernel x blurKernel Gaussian (sigma
// derived from the kernel size) before computing the threshold. A kernel of 1
// disables the blur.
func NewOtsuThresholder(blurKernel int) (*OtsuThresholder, error) {
	blur, err := filters.NewGaussianFilter(blurKernel, 0)
	if err != nil {
		return nil, fmt.Errorf("threshold blur: %w", err)
	}
	return &OtsuThresholder{blur: blur}, nil
}

// Binarize returns the foreground mask and the chosen threshold. Foreground
// is every blurred pixel above the threshold, or at/below it when invert is set.
func (o *OtsuThresholder) Binarize(img *models.Gray, invert bool) (*models.Binary, uint8, error) {
	if err := img.Validate("otsu binarize"); err != nil {
		return nil, 0, err
	}

	blurred, err := o.blur.Apply(img)
	if err != nil {
		return nil, 0, fmt.Errorf("blur failed: %w", err)
	}

	hist, err := histogram.Build(blurred)
	if err != nil {
		return nil, 0, fmt.Errorf("histogram failed: %w", err)
	}
	t := Otsu(hist)

	return Apply(blurred, t, invert), t, nil
}

// Apply thresholds img at t without any smoothing.
func Apply(img *models.Gray, t uint8, invert bool) *models.Binary {
	out := &models.Binary{Width: img.Width, Height: img.Height, Pix: make([]uint8, len(img.Pix))}
	for i, v := range img.Pix {
		if (v > t) != invert {
			out.Pix[i] = models.Foreground
		}
	}
	return out
}

// Otsu returns the threshold t maximizing w0*w1*(mu0-mu1)^2 where class 0
// holds intensities <= t. Only splits leaving both classes non-empty are
// candidates and the lowest t wins ties. A single-valued histogram yields
// that value, so nothing lies above the threshold.
func Otsu(h *histogram.Histogram) uint8 {
	if h.Total == 0 {
		return 0
	}
	if h.Occupied() < 2 {
		return h.Mode()
	}

	p := h.Normalized()

	muTotal := 0.0
	for i, pi := range p {
		muTotal += float64(i) * pi
	}

	var (
		w0, sum0    float64
		best        uint8
		bestVar     = -1.0
		totalPixels = h.Total
		seen        int
	)
	for t := 0; t < histogram.Bins; t++ {
		w0 += p[t]
		sum0 += float64(t) * p[t]
		seen += h.Counts[t]

		if seen == 0 || seen == totalPixels {
			continue
		}

		w1 := 1.0 - w0
		mu0 := sum0 / w0
		mu1 := (muTotal - sum0) / w1
		d := mu0 - mu1
		v := w0 * w1 * d * d

		if v > bestVar {
			bestVar = v
			best = uint8(t)
		}
	}

	return best
}
