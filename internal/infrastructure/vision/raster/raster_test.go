package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"grain-analyzer/internal/domain/entity"
)

func TestBinarize_ThresholdIsInclusive(t *testing.T) {
	g, err := GrayFromRows([][]uint8{
		{0, 127, 128},
		{255, 129, 10},
	})
	require.NoError(t, err)

	m, err := Binarize(g, 128)
	require.NoError(t, err)
	require.Equal(t, []bool{false, false, true, true, true, false}, m.Pix)
	require.Equal(t, 3, m.Count())
}

func TestBinarize_SubImageStartsAtOrigin(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 4, 4))
	g.SetGray(2, 2, color.Gray{Y: 200})
	sub := g.SubImage(image.Rect(1, 1, 4, 4)).(*image.Gray)

	m, err := Binarize(sub, 128)
	require.NoError(t, err)
	require.Equal(t, 3, m.Width)
	require.Equal(t, 3, m.Height)
	require.True(t, m.At(1, 1))
	require.Equal(t, 1, m.Count())
}

func TestBinarize_InvalidInput(t *testing.T) {
	_, err := Binarize(nil, 128)
	require.True(t, entity.IsInvalidInput(err))

	_, err = Binarize(image.NewGray(image.Rect(0, 0, 0, 5)), 128)
	require.True(t, entity.IsInvalidInput(err))
}

func TestGrayFromRows_RaggedRows(t *testing.T) {
	_, err := GrayFromRows([][]uint8{{1, 2, 3}, {1, 2}})
	require.True(t, entity.IsInvalidInput(err))

	_, err = GrayFromRows(nil)
	require.True(t, entity.IsInvalidInput(err))
}

func TestMask_InvertDoesNotTouchInput(t *testing.T) {
	m, err := MaskFromRows([][]bool{{true, false}, {false, false}})
	require.NoError(t, err)

	inv := m.Invert()
	require.Equal(t, 1, m.Count())
	require.Equal(t, 3, inv.Count())
	require.False(t, m.At(-1, 0))
	require.True(t, inv.Invert().Equal(m))
}

func TestMask_ToGray(t *testing.T) {
	m, err := MaskFromRows([][]bool{{true, false, true}})
	require.NoError(t, err)

	g := m.ToGray()
	require.Equal(t, []uint8{255, 0, 255}, g.Pix)
}

func TestUnion(t *testing.T) {
	a, _ := MaskFromRows([][]bool{{true, false, false}})
	b, _ := MaskFromRows([][]bool{{false, false, true}})

	u, err := Union(a, b)
	require.NoError(t, err)
	require.Equal(t, []bool{true, false, true}, u.Pix)
	require.Equal(t, 1, a.Count())

	c, _ := MaskFromRows([][]bool{{true}})
	_, err = Union(a, c)
	require.True(t, entity.IsInvalidInput(err))

	_, err = Union()
	require.True(t, entity.IsInvalidInput(err))
}

func TestMask_CountIn(t *testing.T) {
	m, err := MaskFromRows([][]bool{
		{true, true, true},
		{true, false, true},
		{true, true, true},
	})
	require.NoError(t, err)
	require.Equal(t, 8, m.CountIn(m.Bounds()))
	require.Equal(t, 0, m.CountIn(m.Bounds().Inset(1)))
	require.Equal(t, 3, m.CountIn(image.Rect(-5, -5, 3, 1)))
}
