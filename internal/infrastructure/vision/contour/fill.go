package contour

import (
	"sort"

	"grain-analyzer/internal/domain/entity"
)

// Span горизонтальный отрезок залитой области, X0 и X1 включительно.
type Span struct {
	Y  int
	X0 int
	X1 int
}

// Len число пикселей отрезка.
func (s Span) Len() int {
	return s.X1 - s.X0 + 1
}

type crossing struct {
	x   int
	dir int
}

// Fill растеризует замкнутый контур: граничные пиксели плюс пиксели,
// центры которых лежат внутри ломаной по правилу ненулевого индекса.
// Рёбра контура соединяют 8-соседей, поэтому центр неграничного пикселя
// никогда не лежит на ребре и проверка однозначна.
func Fill(c entity.Contour) []Span {
	n := len(c.Points)
	if n == 0 {
		return nil
	}
	b := c.Bounds()
	width := b.Dx()

	boundary := make([][]bool, b.Dy())
	cross := make([][]crossing, b.Dy())
	for i, p := range c.Points {
		row := p.Y - b.Min.Y
		if boundary[row] == nil {
			boundary[row] = make([]bool, width)
		}
		boundary[row][p.X-b.Min.X] = true

		// полуоткрытое правило: ребро пересекает строку y при min(y) <= y < max(y)
		q := c.Points[(i+1)%n]
		switch {
		case p.Y < q.Y:
			cross[p.Y-b.Min.Y] = append(cross[p.Y-b.Min.Y], crossing{x: p.X, dir: 1})
		case p.Y > q.Y:
			cross[q.Y-b.Min.Y] = append(cross[q.Y-b.Min.Y], crossing{x: q.X, dir: -1})
		}
	}

	var spans []Span
	for row := 0; row < b.Dy(); row++ {
		xs := cross[row]
		sort.SliceStable(xs, func(a, b int) bool { return xs[a].x < xs[b].x })

		y := row + b.Min.Y
		winding, k := 0, 0
		open := false
		var cur Span
		for col := 0; col < width; col++ {
			x := col + b.Min.X
			for k < len(xs) && xs[k].x < x {
				winding += xs[k].dir
				k++
			}
			inside := winding != 0 || (boundary[row] != nil && boundary[row][col])
			switch {
			case inside && !open:
				cur = Span{Y: y, X0: x, X1: x}
				open = true
			case inside:
				cur.X1 = x
			case open:
				spans = append(spans, cur)
				open = false
			}
		}
		if open {
			spans = append(spans, cur)
		}
	}
	return spans
}

// PixelCount число пикселей в отрезках.
func PixelCount(spans []Span) int {
	n := 0
	for _, s := range spans {
		n += s.Len()
	}
	return n
}
