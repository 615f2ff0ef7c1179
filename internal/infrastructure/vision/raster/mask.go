// Package raster содержит бинарные маски и бинаризацию полутоновых растров.
package raster

import (
	"image"

	"grain-analyzer/internal/domain/entity"
)

// Mask бинарный растр, true означает передний план.
type Mask struct {
	Width  int
	Height int
	Pix    []bool // построчно, len = Width*Height
}

// NewMask создаёт пустую маску заданного размера.
func NewMask(width, height int) *Mask {
	return &Mask{Width: width, Height: height, Pix: make([]bool, width*height)}
}

// MaskFromRows строит маску из строк; все строки должны быть одной длины.
func MaskFromRows(rows [][]bool) (*Mask, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, entity.NewInvalidInput("zero-sized mask")
	}
	m := NewMask(len(rows[0]), len(rows))
	for y, row := range rows {
		if len(row) != m.Width {
			return nil, entity.NewInvalidInput("row %d has %d pixels, want %d", y, len(row), m.Width)
		}
		copy(m.Pix[y*m.Width:], row)
	}
	return m, nil
}

// In сообщает, лежит ли пиксель внутри растра.
func (m *Mask) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height
}

// At возвращает значение пикселя; вне растра всегда фон.
func (m *Mask) At(x, y int) bool {
	if !m.In(x, y) {
		return false
	}
	return m.Pix[y*m.Width+x]
}

// Set задаёт значение пикселя внутри растра.
func (m *Mask) Set(x, y int, v bool) {
	if m.In(x, y) {
		m.Pix[y*m.Width+x] = v
	}
}

// Count число пикселей переднего плана.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v {
			n++
		}
	}
	return n
}

// CountIn число пикселей переднего плана внутри прямоугольника.
func (m *Mask) CountIn(r image.Rectangle) int {
	r = r.Intersect(m.Bounds())
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for _, v := range m.Pix[y*m.Width+r.Min.X : y*m.Width+r.Max.X] {
			if v {
				n++
			}
		}
	}
	return n
}

// Clone возвращает независимую копию.
func (m *Mask) Clone() *Mask {
	out := &Mask{Width: m.Width, Height: m.Height, Pix: make([]bool, len(m.Pix))}
	copy(out.Pix, m.Pix)
	return out
}

// Invert возвращает новую маску с обращёнными пикселями.
func (m *Mask) Invert() *Mask {
	out := NewMask(m.Width, m.Height)
	for i, v := range m.Pix {
		out.Pix[i] = !v
	}
	return out
}

// Equal сравнивает размеры и пиксели.
func (m *Mask) Equal(o *Mask) bool {
	if m.Width != o.Width || m.Height != o.Height {
		return false
	}
	for i := range m.Pix {
		if m.Pix[i] != o.Pix[i] {
			return false
		}
	}
	return true
}

// ToGray переводит маску в 0/255.
func (m *Mask) ToGray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Pix {
		if v {
			g.Pix[(i/m.Width)*g.Stride+i%m.Width] = 255
		}
	}
	return g
}

// Bounds возвращает прямоугольник растра.
func (m *Mask) Bounds() image.Rectangle { return image.Rect(0, 0, m.Width, m.Height) }

// Union объединяет маски логическим ИЛИ. Размеры должны совпадать.
func Union(masks ...*Mask) (*Mask, error) {
	if len(masks) == 0 {
		return nil, entity.NewInvalidInput("no masks to merge")
	}
	out := masks[0].Clone()
	for i, m := range masks[1:] {
		if m.Width != out.Width || m.Height != out.Height {
			return nil, entity.NewInvalidInput("mask %d is %dx%d, want %dx%d", i+1, m.Width, m.Height, out.Width, out.Height)
		}
		for j, v := range m.Pix {
			out.Pix[j] = out.Pix[j] || v
		}
	}
	return out, nil
}
