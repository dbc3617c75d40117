package histogram

import (
	"grainscope/internal/models"
)

// Bins is the number of intensity levels of an 8-bit image.
const Bins = 256

// Histogram holds raw per-intensity pixel counts.
type Histogram struct {
	Counts [Bins]int
	Total  int
}

// Build counts the intensities of img.
func Build(img *models.Gray) (*Histogram, error) {
	if err := img.Validate("histogram"); err != nil {
		return nil, err
	}
	h := &Histogram{Total: len(img.Pix)}
	for _, v := range img.Pix {
		h.Counts[v]++
	}
	return h, nil
}

// Normalized returns the probability of each intensity.
func (h *Histogram) Normalized() [Bins]float64 {
	var p [Bins]float64
	if h.Total == 0 {
		return p
	}
	inv := 1.0 / float64(h.Total)
	for i, c := range h.Counts {
		p[i] = float64(c) * inv
	}
	return p
}

// Occupied returns the number of intensities with at least one pixel.
func (h *Histogram) Occupied() int {
	n := 0
	for _, c := range h.Counts {
		if c > 0 {
			n++
		}
	}
	return n
}

// Mode returns the most frequent intensity, lowest on ties.
func (h *Histogram) Mode() uint8 {
	best := 0
	for i, c := range h.Counts {
		if c > h.Counts[best] {
			best = i
		}
	}
	return uint8(best)
}
