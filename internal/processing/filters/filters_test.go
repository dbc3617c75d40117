package filters

import (
	"testing"

	"grainscope/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformGray(t *testing.T, w, h int, v uint8) *models.Gray {
	t.Helper()
	g, err := models.NewGray(w, h)
	require.NoError(t, err)
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

func square(t *testing.T, w, h, x0, y0, size int) *models.Binary {
	t.Helper()
	b, err := models.NewBinary(w, h)
	require.NoError(t, err)
	for y := y0; y < y0+size; y++ {
		for x := x0; x < x0+size; x++ {
			b.SetForeground(x, y)
		}
	}
	return b
}

func rectFilter(t *testing.T) *MorphologyFilter {
	t.Helper()
	m, err := NewMorphologyFilter(ShapeRect)
	require.NoError(t, err)
	return m
}

func TestCLAHEParamsValidation(t *testing.T) {
	_, err := NewCLAHEFilter(CLAHEParams{Enabled: true, ClipLimit: 0, TileGrid: 8})
	assert.ErrorIs(t, err, models.ErrInvalidParameter)

	_, err = NewCLAHEFilter(CLAHEParams{Enabled: true, ClipLimit: 2, TileGrid: 0})
	assert.ErrorIs(t, err, models.ErrInvalidParameter)

	f, err := NewCLAHEFilter(DefaultCLAHEParams())
	require.NoError(t, err)
	assert.True(t, f.ShouldExecute())
}

func TestCLAHEDisabledPassesThrough(t *testing.T) {
	params := DefaultCLAHEParams()
	params.Enabled = false
	f, err := NewCLAHEFilter(params)
	require.NoError(t, err)

	img := uniformGray(t, 16, 16, 42)
	img.Set(3, 3, 200)
	out, err := f.Enhance(img)
	require.NoError(t, err)
	assert.Equal(t, img.Pix, out.Pix)

	out.Set(0, 0, 1)
	assert.Equal(t, uint8(42), img.At(0, 0))
}

func TestCLAHEKeepsGeometry(t *testing.T) {
	f, err := NewCLAHEFilter(DefaultCLAHEParams())
	require.NoError(t, err)

	img := uniformGray(t, 64, 48, 0)
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, uint8(x*3+y))
		}
	}
	out, err := f.Enhance(img)
	require.NoError(t, err)
	assert.Equal(t, 64, out.Width)
	assert.Equal(t, 48, out.Height)
	assert.Len(t, out.Pix, 64*48)

	_, err = f.Enhance(nil)
	assert.ErrorIs(t, err, models.ErrInvalidImage)
}

func TestGaussianValidation(t *testing.T) {
	_, err := NewGaussianFilter(4, 0)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)
	_, err = NewGaussianFilter(0, 0)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)
	_, err = NewGaussianFilter(3, -1)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)
}

func TestGaussianUniformImageUnchanged(t *testing.T) {
	f, err := NewGaussianFilter(5, 0)
	require.NoError(t, err)

	img := uniformGray(t, 12, 9, 77)
	out, err := f.Apply(img)
	require.NoError(t, err)
	assert.Equal(t, img.Pix, out.Pix)
}

func TestGaussianKernelOnePassesThrough(t *testing.T) {
	f, err := NewGaussianFilter(1, 0)
	require.NoError(t, err)

	img := uniformGray(t, 4, 4, 0)
	img.Set(2, 2, 255)
	out, err := f.Apply(img)
	require.NoError(t, err)
	assert.Equal(t, img.Pix, out.Pix)
}

func TestGaussianSmoothsImpulse(t *testing.T) {
	f, err := NewGaussianFilter(5, 0)
	require.NoError(t, err)

	img := uniformGray(t, 11, 11, 0)
	img.Set(5, 5, 255)
	out, err := f.Apply(img)
	require.NoError(t, err)
	assert.Less(t, out.At(5, 5), uint8(255))
	assert.Greater(t, out.At(5, 5), out.At(6, 5))
	assert.Greater(t, out.At(6, 5), uint8(0))
}

func TestMorphologyCloseFillsHole(t *testing.T) {
	m := rectFilter(t)
	b := square(t, 15, 15, 4, 4, 7)
	b.Pix[7*15+7] = models.Background

	out, err := m.Close(b, 3, 1)
	require.NoError(t, err)
	assert.True(t, out.IsForeground(7, 7))
	assert.Equal(t, 49, out.CountForeground())
	assert.False(t, b.IsForeground(7, 7), "input must not be modified")
}

func TestMorphologyOpenRemovesSpeckle(t *testing.T) {
	m := rectFilter(t)
	b := square(t, 16, 16, 3, 3, 5)
	b.SetForeground(12, 12)

	out, err := m.Open(b, 3, 1)
	require.NoError(t, err)
	assert.False(t, out.IsForeground(12, 12))
	assert.Equal(t, 25, out.CountForeground())
}

func TestMorphologyDilateGrowsPixel(t *testing.T) {
	m := rectFilter(t)
	b := square(t, 15, 15, 7, 7, 1)

	out, err := m.Dilate(b, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, 49, out.CountForeground())
	assert.True(t, out.IsForeground(4, 4))
	assert.True(t, out.IsForeground(10, 10))
	assert.False(t, out.IsForeground(3, 7))
}

func TestMorphologyShapes(t *testing.T) {
	cross, err := NewMorphologyFilter(ShapeCross)
	require.NoError(t, err)

	out, err := cross.Dilate(square(t, 9, 9, 4, 4, 1), 3, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, out.CountForeground())
	assert.True(t, out.IsForeground(4, 3))
	assert.False(t, out.IsForeground(3, 3))

	def, err := NewMorphologyFilter("")
	require.NoError(t, err)
	out, err = def.Dilate(square(t, 9, 9, 4, 4, 1), 3, 1)
	require.NoError(t, err)
	assert.Equal(t, 9, out.CountForeground())

	_, err = NewMorphologyFilter("hexagon")
	assert.ErrorIs(t, err, models.ErrInvalidParameter)
}

func TestMorphologyRejectsBadParameters(t *testing.T) {
	m := rectFilter(t)
	b := square(t, 5, 5, 1, 1, 2)

	_, err := m.Close(b, 2, 1)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)
	_, err = m.Open(b, 3, 0)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)
	_, err = m.Dilate(nil, 3, 1)
	assert.ErrorIs(t, err, models.ErrInvalidImage)
}
