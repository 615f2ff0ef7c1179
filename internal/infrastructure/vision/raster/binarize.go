package raster

import (
	"image"

	"grain-analyzer/internal/domain/entity"
)

// ValidateGray проверяет, что растр задан и имеет ненулевой размер.
func ValidateGray(g *image.Gray) error {
	if g == nil {
		return entity.NewInvalidInput("nil raster")
	}
	b := g.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return entity.NewInvalidInput("zero-sized raster %dx%d", b.Dx(), b.Dy())
	}
	if len(g.Pix) < (b.Dy()-1)*g.Stride+b.Dx() {
		return entity.NewInvalidInput("raster buffer holds %d bytes, need %d", len(g.Pix), (b.Dy()-1)*g.Stride+b.Dx())
	}
	return nil
}

// GrayFromRows строит полутоновый растр из строк интенсивностей.
func GrayFromRows(rows [][]uint8) (*image.Gray, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, entity.NewInvalidInput("zero-sized raster")
	}
	w := len(rows[0])
	g := image.NewGray(image.Rect(0, 0, w, len(rows)))
	for y, row := range rows {
		if len(row) != w {
			return nil, entity.NewInvalidInput("row %d has %d pixels, want %d", y, len(row), w)
		}
		copy(g.Pix[y*g.Stride:], row)
	}
	return g, nil
}

// Binarize возвращает маску, где пиксель истинен при интенсивности >= threshold.
// Результат всегда начинается с (0,0), независимо от Bounds().Min входа.
func Binarize(g *image.Gray, threshold uint8) (*Mask, error) {
	if err := ValidateGray(g); err != nil {
		return nil, err
	}
	b := g.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		row := g.Pix[y*g.Stride : y*g.Stride+b.Dx()]
		for x, v := range row {
			m.Pix[y*m.Width+x] = v >= threshold
		}
	}
	return m, nil
}
