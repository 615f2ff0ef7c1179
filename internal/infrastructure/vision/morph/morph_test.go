package morph_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"grain-analyzer/internal/domain/entity"
	"grain-analyzer/internal/infrastructure/vision/contour"
	"grain-analyzer/internal/infrastructure/vision/morph"
	"grain-analyzer/internal/infrastructure/vision/raster"
)

func rect(m *raster.Mask, x0, y0, w, h int, v bool) {
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			m.Set(x, y, v)
		}
	}
}

func disc(m *raster.Mask, cx, cy, r int) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			if (x-cx)*(x-cx)+(y-cy)*(y-cy) <= r*r {
				m.Set(x, y, true)
			}
		}
	}
}

func element(t *testing.T, size int) morph.StructuringElement {
	t.Helper()
	e, err := morph.NewStructuringElement(size)
	require.NoError(t, err)
	return e
}

func TestNewStructuringElement_RejectsEvenSize(t *testing.T) {
	for _, size := range []int{0, -3, 2, 4} {
		_, err := morph.NewStructuringElement(size)
		require.True(t, entity.IsConfigurationError(err), "size %d", size)
	}

	e, err := morph.ElementForRadius(2)
	require.NoError(t, err)
	require.Equal(t, 5, e.Size())
	require.Equal(t, 2, e.Radius())

	_, err = morph.ElementForRadius(-1)
	require.True(t, entity.IsConfigurationError(err))
}

func TestDilate_SinglePixel(t *testing.T) {
	m := raster.NewMask(7, 7)
	m.Set(3, 3, true)
	m.Set(0, 0, true)

	d := morph.Dilate(m, element(t, 3))
	require.Equal(t, 9+4, d.Count())
	require.True(t, d.At(2, 2))
	require.True(t, d.At(4, 4))
	require.False(t, d.At(5, 5))
	require.Equal(t, 2, m.Count())
}

func TestErode_BorderCountsAsBackground(t *testing.T) {
	m := raster.NewMask(5, 5)
	rect(m, 0, 0, 5, 5, true)

	e := morph.Erode(m, element(t, 3))
	require.Equal(t, 9, e.Count())
	require.False(t, e.At(0, 2))
	require.True(t, e.At(1, 1))
	require.Equal(t, 25, m.Count())
}

func TestErode_KernelLargerThanMask(t *testing.T) {
	m := raster.NewMask(3, 3)
	rect(m, 0, 0, 3, 3, true)
	require.Equal(t, 0, morph.Erode(m, element(t, 5)).Count())
	require.Equal(t, 9, morph.Dilate(m, element(t, 5)).Count())
}

func TestClosing_KeepsSimplyConnectedShapes(t *testing.T) {
	for _, k := range []int{3, 5, 7} {
		m := raster.NewMask(80, 80)
		disc(m, 40, 40, 20)
		rect(m, 5, 5, 12, 12, true)

		e := element(t, k)
		closed := morph.Erode(morph.Dilate(m, e), e)

		// прирост только у существующих границ, не больше радиуса ядра на граничный пиксель
		diff := closed.Count() - m.Count()
		require.GreaterOrEqual(t, diff, 0)

		before, err := contour.Trace(m)
		require.NoError(t, err)
		after, err := contour.Trace(closed)
		require.NoError(t, err)
		boundary := 0
		for _, c := range before.Contours {
			boundary += len(c.Points)
		}
		require.LessOrEqual(t, diff, e.Radius()*boundary)
		require.Len(t, after.External(), len(before.External()), "k=%d", k)

		// уже замкнутый квадрат не меняется
		require.Equal(t, m.At(5, 5), closed.At(5, 5))
		require.True(t, closed.At(16, 16))
		require.False(t, closed.At(17, 17))
	}
}

func TestExpand_RemovesThinBridgesAndFillsBorder(t *testing.T) {
	m := raster.NewMask(40, 20)
	rect(m, 5, 5, 10, 10, true)
	rect(m, 25, 5, 10, 10, true)
	rect(m, 15, 9, 10, 1, true) // мост толщиной в пиксель

	out, err := morph.Expand(m, 1)
	require.NoError(t, err)

	require.False(t, out.At(20, 9), "bridge must be cut")
	require.True(t, out.At(5, 5))
	require.True(t, out.At(14, 14))
	require.True(t, out.At(25, 5))
	// эрозия в инвертированной области считает внешность фоном
	require.True(t, out.At(0, 0))
	require.True(t, out.At(39, 10))
	require.False(t, out.At(2, 2))
	require.True(t, m.At(20, 9))
}

func TestExpand_ZeroRadiusIsIdentity(t *testing.T) {
	m := raster.NewMask(10, 10)
	disc(m, 5, 5, 3)
	out, err := morph.Expand(m, 0)
	require.NoError(t, err)
	require.True(t, out.Equal(m))
}

func TestGaussianKernel(t *testing.T) {
	k, err := morph.GaussianKernel(3, 0)
	require.NoError(t, err)
	require.Equal(t, []float64{0.25, 0.5, 0.25}, k)

	k, err = morph.GaussianKernel(9, 0)
	require.NoError(t, err)
	var sum float64
	for _, v := range k {
		sum += v
	}
	require.InDelta(t, 1.0, sum, 1e-12)
	require.Equal(t, k[0], k[8])
	require.Greater(t, k[4], k[3])

	_, err = morph.GaussianKernel(4, 0)
	require.True(t, entity.IsConfigurationError(err))
}

func TestGaussianBlur(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 5, 5))
	g.SetGray(2, 2, color.Gray{Y: 255})

	b, err := morph.GaussianBlur(g, 3)
	require.NoError(t, err)
	require.Equal(t, uint8(64), b.GrayAt(2, 2).Y) // 255 * 0.25
	require.Equal(t, uint8(32), b.GrayAt(1, 2).Y) // 255 * 0.125
	require.Equal(t, uint8(16), b.GrayAt(1, 1).Y) // 255 * 0.0625
	require.Equal(t, uint8(0), b.GrayAt(0, 0).Y)

	flat := image.NewGray(image.Rect(0, 0, 4, 3))
	for i := range flat.Pix {
		flat.Pix[i] = 90
	}
	b, err = morph.GaussianBlur(flat, 5)
	require.NoError(t, err)
	for _, v := range b.Pix {
		require.Equal(t, uint8(90), v)
	}
}

func TestDenoise_RemovesSpeckleAndShrinksBlocks(t *testing.T) {
	m := raster.NewMask(20, 20)
	rect(m, 0, 0, 20, 20, true)
	m.Set(3, 3, false)           // одиночная тёмная точка
	rect(m, 10, 10, 5, 5, false) // тёмный блок 5x5

	out, err := morph.Denoise(m, 3, 200)
	require.NoError(t, err)
	require.False(t, out.At(3, 3))
	require.Equal(t, 9, out.Count())
	require.True(t, out.At(12, 12))
	require.False(t, out.At(10, 12))
	require.Equal(t, 20*20-26, m.Count())
}
