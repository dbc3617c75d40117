package metrics

import (
	"math"
	"testing"

	"grainscope/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labelMap(w, h int, labels ...int32) *models.LabelMap {
	return &models.LabelMap{Width: w, Height: h, Labels: labels}
}

func TestCountAndAreas(t *testing.T) {
	l := labelMap(4, 2,
		0, 1, 1, 3,
		0, 1, 3, 3)
	count, areas, err := CountAndAreas(l)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, []int{3, 3}, areas)
}

func TestCountAndAreasWithoutBackground(t *testing.T) {
	count, areas, err := CountAndAreas(labelMap(3, 1, 2, 2, 5))
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, []int{2, 1}, areas)
}

func TestCountAndAreasAllBackground(t *testing.T) {
	count, areas, err := CountAndAreas(labelMap(2, 2, 0, 0, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Empty(t, areas)

	_, _, err = CountAndAreas(nil)
	assert.ErrorIs(t, err, models.ErrInvalidImage)
}

func TestGrainSizeNumber(t *testing.T) {
	assert.InDelta(t, 3.322*math.Log10(2)-2.95, GrainSizeNumber(2, 1.0), 1e-9)
	assert.InDelta(t, -1.95, GrainSizeNumber(2, 1.0), 0.01)
	assert.InDelta(t, -2.95, GrainSizeNumber(1, 1.0), 1e-9)
	assert.InDelta(t, 3.322*2-2.95, GrainSizeNumber(50, 0.5), 1e-9)

	assert.Equal(t, 0.0, GrainSizeNumber(0, 1.0))
	assert.Equal(t, 0.0, GrainSizeNumber(10, 0))
	assert.Equal(t, 0.0, GrainSizeNumber(10, -1))
}

func TestCarbonFraction(t *testing.T) {
	img, err := models.GrayFromPix(4, 1, []uint8{0, 99, 100, 255})
	require.NoError(t, err)

	carbon, ratio, err := CarbonFraction(img, DefaultDarkThreshold)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, ratio, 1e-12)
	assert.InDelta(t, 0.5*EutectoidCarbon, carbon, 1e-12)
}

func TestCarbonFractionExtremes(t *testing.T) {
	black, err := models.NewGray(10, 10)
	require.NoError(t, err)

	carbon, ratio, err := CarbonFraction(black, DefaultDarkThreshold)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, ratio, 1e-12)
	assert.InDelta(t, EutectoidCarbon, carbon, 1e-12)

	carbon, ratio, err = CarbonFraction(black, 0)
	require.NoError(t, err)
	assert.Zero(t, ratio)
	assert.Zero(t, carbon)

	_, _, err = CarbonFraction(nil, 100)
	assert.ErrorIs(t, err, models.ErrInvalidImage)
}

func TestSummarize(t *testing.T) {
	s := Summarize([]int{4, 1, 3, 2})
	assert.Equal(t, 10.0, s.Total)
	assert.Equal(t, 2.5, s.Mean)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
	assert.InDelta(t, math.Sqrt(5.0/3.0), s.StdDev, 1e-9)
	assert.Contains(t, []float64{2, 3}, s.Median)

	single := Summarize([]int{7})
	assert.Equal(t, 7.0, single.Median)
	assert.Zero(t, single.StdDev)

	assert.Equal(t, AreaSummary{}, Summarize(nil))
}

func TestNewRecord(t *testing.T) {
	gray, err := models.GrayFromPix(4, 2, []uint8{
		10, 200, 200, 10,
		200, 200, 200, 200,
	})
	require.NoError(t, err)
	labels := labelMap(4, 2,
		0, 1, 1, 0,
		2, 2, 2, 2)

	rec, err := NewRecord("otsu", gray, labels, Options{ReferenceAreaMM2: 1.0, DarkThreshold: 100})
	require.NoError(t, err)
	assert.Equal(t, "otsu", rec.Strategy)
	assert.Equal(t, 2, rec.GrainCount)
	assert.Equal(t, []int{2, 4}, rec.GrainAreas)
	assert.InDelta(t, GrainSizeNumber(2, 1.0), rec.GNumber, 1e-12)
	assert.InDelta(t, 0.25, rec.DarkRatio, 1e-12)
	assert.InDelta(t, 0.25*EutectoidCarbon, rec.CarbonFraction, 1e-12)
	assert.Equal(t, 6.0, rec.Areas.Total)
	assert.Empty(t, rec.Degenerate)
	assert.True(t, rec.GNumberDefined())
}

func TestNewRecordDegenerate(t *testing.T) {
	gray, err := models.NewGray(3, 3)
	require.NoError(t, err)
	empty, err := models.NewLabelMap(3, 3)
	require.NoError(t, err)

	rec, err := NewRecord("watershed", gray, empty, Options{ReferenceAreaMM2: 0, DarkThreshold: 100})
	require.NoError(t, err)
	assert.Equal(t, 0, rec.GrainCount)
	assert.Equal(t, 0.0, rec.GNumber)
	assert.Equal(t, []Degeneracy{NoGrains, NoScale}, rec.Degenerate)
	assert.False(t, rec.GNumberDefined())
	assert.InDelta(t, EutectoidCarbon, rec.CarbonFraction, 1e-12)
}

func TestNewRecordSizeMismatch(t *testing.T) {
	gray, err := models.NewGray(3, 3)
	require.NoError(t, err)
	labels, err := models.NewLabelMap(3, 2)
	require.NoError(t, err)

	_, err = NewRecord("otsu", gray, labels, Options{ReferenceAreaMM2: 1})
	assert.ErrorIs(t, err, models.ErrInvalidImage)
}

func TestCountAndAreasRejectsNegativeLabels(t *testing.T) {
	_, _, err := CountAndAreas(labelMap(3, 1, 1, -2, 1))
	assert.ErrorIs(t, err, models.ErrInvalidImage)
}
