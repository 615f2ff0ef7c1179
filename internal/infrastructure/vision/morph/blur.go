package morph

import (
	"image"
	"math"

	"grain-analyzer/internal/domain/entity"
)

// Фиксированные ядра для малых окон при sigma <= 0, как в OpenCV getGaussianKernel.
var smallGaussianTab = map[int][]float64{
	1: {1},
	3: {0.25, 0.5, 0.25},
	5: {0.0625, 0.25, 0.375, 0.25, 0.0625},
	7: {0.03125, 0.109375, 0.21875, 0.28125, 0.21875, 0.109375, 0.03125},
}

// GaussianKernel возвращает нормированное одномерное ядро стороны size.
// При sigma <= 0 sigma выводится из размера: 0.3*((size-1)*0.5-1)+0.8.
func GaussianKernel(size int, sigma float64) ([]float64, error) {
	if size < 1 || size%2 == 0 {
		return nil, entity.NewConfigurationError("blur_kernel", "%d must be a positive odd size", size)
	}
	if sigma <= 0 {
		if tab, ok := smallGaussianTab[size]; ok {
			out := make([]float64, size)
			copy(out, tab)
			return out, nil
		}
		sigma = 0.3*(float64(size-1)*0.5-1) + 0.8
	}

	out := make([]float64, size)
	var sum float64
	half := size / 2
	for i := range out {
		d := float64(i - half)
		out[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out, nil
}

// GaussianBlur сглаживает растр разделимым гауссовым ядром.
// Край растра отражается без повтора крайнего пикселя (dcb|abcd|cba).
func GaussianBlur(g *image.Gray, size int) (*image.Gray, error) {
	kernel, err := GaussianKernel(size, 0)
	if err != nil {
		return nil, err
	}
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	half := size / 2

	tmp := make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := g.Pix[y*g.Stride : y*g.Stride+w]
		for x := 0; x < w; x++ {
			var acc float64
			for k, wt := range kernel {
				acc += wt * float64(row[reflect101(x+k-half, w)])
			}
			tmp[y*w+x] = acc
		}
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for k, wt := range kernel {
				acc += wt * tmp[reflect101(y+k-half, h)*w+x]
			}
			out.Pix[y*out.Stride+x] = clampByte(acc)
		}
	}
	return out, nil
}

func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}

func clampByte(v float64) uint8 {
	v = math.Floor(v + 0.5)
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}
