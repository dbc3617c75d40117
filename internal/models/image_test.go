package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDimensions(t *testing.T) {
	assert.NoError(t, ValidateDimensions(1, 1, "test"))
	assert.ErrorIs(t, ValidateDimensions(0, 10, "test"), ErrInvalidImage)
	assert.ErrorIs(t, ValidateDimensions(10, -1, "test"), ErrInvalidImage)
	assert.ErrorIs(t, ValidateDimensions(40000, 10, "test"), ErrInvalidImage)
}

func TestGrayFromPixCopies(t *testing.T) {
	pix := []uint8{1, 2, 3, 4, 5, 6}
	g, err := GrayFromPix(3, 2, pix)
	require.NoError(t, err)

	pix[0] = 99
	assert.Equal(t, uint8(1), g.At(0, 0))
	assert.Equal(t, uint8(6), g.At(2, 1))

	_, err = GrayFromPix(3, 3, pix)
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestGrayValidate(t *testing.T) {
	var nilGray *Gray
	assert.ErrorIs(t, nilGray.Validate("op"), ErrInvalidImage)

	short := &Gray{Width: 4, Height: 4, Pix: make([]uint8, 3)}
	assert.ErrorIs(t, short.Validate("op"), ErrInvalidImage)

	g, err := NewGray(4, 4)
	require.NoError(t, err)
	assert.NoError(t, g.Validate("op"))
}

func TestGrayCloneIsIndependent(t *testing.T) {
	g, err := NewGray(2, 2)
	require.NoError(t, err)
	c := g.Clone()
	c.Set(1, 1, 200)
	assert.Equal(t, uint8(0), g.At(1, 1))
	assert.Equal(t, uint8(200), c.At(1, 1))
}

func TestBinaryForeground(t *testing.T) {
	b, err := NewBinary(3, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, b.CountForeground())

	b.SetForeground(1, 1)
	b.SetForeground(2, 0)
	assert.True(t, b.IsForeground(1, 1))
	assert.False(t, b.IsForeground(0, 0))
	assert.Equal(t, 2, b.CountForeground())
	assert.Equal(t, Foreground, b.Pix[1*3+1])
}

func TestLabelMapMax(t *testing.T) {
	l, err := NewLabelMap(3, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(0), l.Max())

	l.Labels = []int32{0, 7, 3}
	assert.Equal(t, int32(7), l.Max())
	assert.Equal(t, int32(3), l.At(2, 0))
}

func TestRGBValidate(t *testing.T) {
	c, err := NewRGB(2, 1)
	require.NoError(t, err)
	assert.NoError(t, c.Validate("op"))

	c.Pix = c.Pix[:5]
	assert.ErrorIs(t, c.Validate("op"), ErrInvalidImage)
}

func TestLabelMapRejectsNegativeLabels(t *testing.T) {
	l := &LabelMap{Width: 2, Height: 2, Labels: []int32{0, 1, -1, 2}}
	err := l.Validate("op")
	assert.ErrorIs(t, err, ErrInvalidImage)
	assert.Contains(t, err.Error(), "(0, 1)")
}

func TestSameSize(t *testing.T) {
	assert.NoError(t, SameSize(4, 5, 4, 5, "op"))
	assert.ErrorIs(t, SameSize(4, 5, 5, 4, "op"), ErrInvalidImage)
}
