package conversion

import (
	"testing"

	"grainscope/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestGrayRoundTrip(t *testing.T) {
	g, err := models.GrayFromPix(3, 2, []uint8{0, 10, 20, 30, 40, 250})
	require.NoError(t, err)

	m, err := GrayToMat(g, "gray")
	require.NoError(t, err)
	defer m.Close()
	assert.Equal(t, 2, m.Rows())
	assert.Equal(t, 3, m.Cols())

	back, err := MatToGray(m)
	require.NoError(t, err)
	assert.Equal(t, g.Pix, back.Pix)
}

func TestMatToBinaryNormalizesForeground(t *testing.T) {
	m, err := GrayToMat(&models.Gray{Width: 4, Height: 1, Pix: []uint8{0, 1, 128, 255}}, "bin")
	require.NoError(t, err)
	defer m.Close()

	b, err := MatToBinary(m)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 255, 255, 255}, b.Pix)
}

func TestRGBRoundTrip(t *testing.T) {
	img := &models.RGB{Width: 2, Height: 1, Pix: []uint8{1, 2, 3, 4, 5, 6}}
	m, err := RGBToMat(img, "rgb")
	require.NoError(t, err)
	defer m.Close()
	assert.Equal(t, 3, m.Channels())

	back, err := MatToRGB(m)
	require.NoError(t, err)
	assert.Equal(t, img.Pix, back.Pix)
}

func TestFloatRoundTrip(t *testing.T) {
	values := []float32{0, 1.5, -2, 3.25, 1e6, 0.125}
	m, err := FloatsToMat(values, 2, 3, "floats")
	require.NoError(t, err)
	defer m.Close()
	assert.Equal(t, gocv.MatTypeCV32F, m.Type())

	back, err := MatToFloats(m)
	require.NoError(t, err)
	assert.Equal(t, values, back)

	_, err = FloatsToMat(values, 4, 4, "floats")
	assert.ErrorIs(t, err, models.ErrInvalidImage)
}

func TestLabelsToFloatMat(t *testing.T) {
	labels := &models.LabelMap{Width: 2, Height: 2, Labels: []int32{0, 1, 2, 70000}}
	m, err := LabelsToFloatMat(labels, "labels")
	require.NoError(t, err)
	defer m.Close()

	back, err := MatToFloats(m)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 2, 70000}, back)
}

func TestConversionRejectsWrongType(t *testing.T) {
	m, err := FloatsToMat([]float32{1, 2}, 1, 2, "floats")
	require.NoError(t, err)
	defer m.Close()

	_, err = MatToGray(m)
	assert.Error(t, err)
	_, err = MatToLabels(m)
	assert.Error(t, err)

	_, err = GrayToMat(nil, "nil")
	assert.ErrorIs(t, err, models.ErrInvalidImage)
}
