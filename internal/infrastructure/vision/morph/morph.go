package morph

import "grain-analyzer/internal/infrastructure/vision/raster"

// Dilate: пиксель становится передним планом, если под ядром есть хотя бы один пиксель переднего плана.
// Пиксели вне растра считаются фоном.
func Dilate(m *raster.Mask, e StructuringElement) *raster.Mask {
	return apply(m, e, false)
}

// Erode: пиксель остаётся передним планом, только если все пиксели под ядром принадлежат переднему плану.
// Ядро, выходящее за край растра, захватывает фон, поэтому у границы эрозия всегда даёт фон.
func Erode(m *raster.Mask, e StructuringElement) *raster.Mask {
	return apply(m, e, true)
}

// Квадратное ядро разделимо: сначала проход по строкам, затем по столбцам.
func apply(m *raster.Mask, e StructuringElement, erode bool) *raster.Mask {
	if e.size <= 1 {
		return m.Clone()
	}
	r := e.Radius()
	rows := raster.NewMask(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		line := m.Pix[y*m.Width : (y+1)*m.Width]
		window(line, rows.Pix[y*m.Width:(y+1)*m.Width], r, erode)
	}

	out := raster.NewMask(m.Width, m.Height)
	col := make([]bool, m.Height)
	res := make([]bool, m.Height)
	for x := 0; x < m.Width; x++ {
		for y := 0; y < m.Height; y++ {
			col[y] = rows.Pix[y*m.Width+x]
		}
		window(col, res, r, erode)
		for y := 0; y < m.Height; y++ {
			out.Pix[y*m.Width+x] = res[y]
		}
	}
	return out
}

// window делает одномерный проход окна 2r+1 по счётчику пикселей переднего плана.
func window(in, out []bool, r int, erode bool) {
	n := len(in)
	prefix := make([]int, n+1)
	for i, v := range in {
		prefix[i+1] = prefix[i]
		if v {
			prefix[i+1]++
		}
	}
	for i := 0; i < n; i++ {
		lo, hi := i-r, i+r
		if erode {
			if lo < 0 || hi >= n {
				out[i] = false
				continue
			}
			out[i] = prefix[hi+1]-prefix[lo] == 2*r+1
			continue
		}
		if lo < 0 {
			lo = 0
		}
		if hi >= n {
			hi = n - 1
		}
		out[i] = prefix[hi+1]-prefix[lo] > 0
	}
}
