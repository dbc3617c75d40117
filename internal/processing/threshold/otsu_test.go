package threshold

import (
	"testing"

	"grainscope/internal/models"
	"grainscope/internal/processing/histogram"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grayOf(t *testing.T, w, h int, fill func(x, y int) uint8) *models.Gray {
	t.Helper()
	g, err := models.NewGray(w, h)
	require.NoError(t, err)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.Set(x, y, fill(x, y))
		}
	}
	return g
}

func histOf(t *testing.T, g *models.Gray) *histogram.Histogram {
	t.Helper()
	h, err := histogram.Build(g)
	require.NoError(t, err)
	return h
}

func TestOtsuBimodalPicksLowestOptimalSplit(t *testing.T) {
	g := grayOf(t, 10, 10, func(x, _ int) uint8 {
		if x < 5 {
			return 50
		}
		return 200
	})
	assert.Equal(t, uint8(50), Otsu(histOf(t, g)))
}

func TestOtsuSeparatesUnequalClasses(t *testing.T) {
	g := grayOf(t, 10, 10, func(x, y int) uint8 {
		switch {
		case x < 2:
			return 20 + uint8(y)
		case x < 4:
			return 40 + uint8(y)
		default:
			return 180 + uint8(y)
		}
	})
	thr := Otsu(histOf(t, g))
	assert.GreaterOrEqual(t, thr, uint8(49))
	assert.Less(t, thr, uint8(180))
}

func TestOtsuUniformImage(t *testing.T) {
	g := grayOf(t, 6, 6, func(_, _ int) uint8 { return 128 })
	thr := Otsu(histOf(t, g))
	assert.Equal(t, uint8(128), thr)
	assert.Equal(t, 0, Apply(g, thr, false).CountForeground())

	black := grayOf(t, 6, 6, func(_, _ int) uint8 { return 0 })
	assert.Equal(t, uint8(0), Otsu(histOf(t, black)))
}

func TestOtsuEmptyHistogram(t *testing.T) {
	assert.Equal(t, uint8(0), Otsu(&histogram.Histogram{}))
}

func TestApplyInvert(t *testing.T) {
	g, err := models.GrayFromPix(4, 1, []uint8{10, 100, 101, 250})
	require.NoError(t, err)

	assert.Equal(t, []uint8{0, 0, 255, 255}, Apply(g, 100, false).Pix)
	assert.Equal(t, []uint8{255, 255, 0, 0}, Apply(g, 100, true).Pix)
}

func TestBinarize(t *testing.T) {
	g := grayOf(t, 20, 10, func(x, _ int) uint8 {
		if x < 10 {
			return 50
		}
		return 200
	})

	o, err := NewOtsuThresholder(DefaultBlurKernel)
	require.NoError(t, err)

	b, thr, err := o.Binarize(g, false)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, thr, uint8(50))
	assert.Less(t, thr, uint8(200))
	assert.False(t, b.IsForeground(0, 5))
	assert.True(t, b.IsForeground(19, 5))

	inv, _, err := o.Binarize(g, true)
	require.NoError(t, err)
	assert.True(t, inv.IsForeground(0, 5))
	assert.False(t, inv.IsForeground(19, 5))
	assert.Equal(t, 200, b.CountForeground()+inv.CountForeground())
}

func TestBinarizeWithoutBlurIsExact(t *testing.T) {
	g := grayOf(t, 4, 4, func(x, _ int) uint8 {
		if x%2 == 0 {
			return 30
		}
		return 220
	})
	o, err := NewOtsuThresholder(1)
	require.NoError(t, err)

	b, thr, err := o.Binarize(g, false)
	require.NoError(t, err)
	assert.Equal(t, uint8(30), thr)
	assert.Equal(t, 8, b.CountForeground())
}

func TestNewOtsuThresholderRejectsEvenKernel(t *testing.T) {
	_, err := NewOtsuThresholder(4)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)
}
