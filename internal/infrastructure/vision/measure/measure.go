// Package measure считает периметр, площадь и центр масс контуров.
package measure

import (
	"math"

	"github.com/golang/geo/r2"

	"grain-analyzer/internal/domain/entity"
	"grain-analyzer/internal/infrastructure/vision/contour"
)

// Measure возвращает измерения контура.
//
// Центр масс считается по моментам залитой области (граница плюс внутренние пиксели).
// При M00 == 0 (пустой контур) центр масс остаётся (0,0), см. Degenerate.
func Measure(c entity.Contour) entity.Measurement {
	spans := contour.Fill(c)
	mom := Moments(spans)

	m := entity.Measurement{
		Perimeter: Perimeter(c),
		Area:      ShoelaceArea(c),
		PixelArea: int(mom.M00),
		Moments:   mom,
	}
	if mom.M00 != 0 {
		m.Centroid = r2.Point{X: mom.M10 / mom.M00, Y: mom.M01 / mom.M00}
	}
	return m
}

// Degenerate возвращает причину вырожденности или пустую строку.
func Degenerate(m entity.Measurement) (entity.DegenerateReason, bool) {
	switch {
	case m.Moments.M00 == 0:
		return entity.ReasonZeroMoment, true
	case m.Area == 0:
		return entity.ReasonZeroArea, true
	default:
		return "", false
	}
}

// Perimeter считает циклическую сумму евклидовых расстояний между соседними точками.
func Perimeter(c entity.Contour) float64 {
	n := len(c.Points)
	if n < 2 {
		return 0
	}
	var sum float64
	for i, p := range c.Points {
		q := c.Points[(i+1)%n]
		sum += math.Hypot(float64(q.X-p.X), float64(q.Y-p.Y))
	}
	return sum
}

// ShoelaceArea считает 0.5*|Σ(x_i*y_{i+1} - x_{i+1}*y_i)|.
func ShoelaceArea(c entity.Contour) float64 {
	return math.Abs(SignedArea(c))
}

// SignedArea площадь со знаком в координатах изображения:
// отрицательная для внешних границ, положительная для дыр.
func SignedArea(c entity.Contour) float64 {
	n := len(c.Points)
	if n < 3 {
		return 0
	}
	var s int64
	for i, p := range c.Points {
		q := c.Points[(i+1)%n]
		s += int64(p.X)*int64(q.Y) - int64(q.X)*int64(p.Y)
	}
	return float64(s) / 2
}

// Moments сырые моменты по отрезкам залитой области.
func Moments(spans []contour.Span) entity.Moments {
	var m entity.Moments
	for _, s := range spans {
		n := float64(s.Len())
		m.M00 += n
		// сумма X по отрезку: n*(x0+x1)/2
		m.M10 += n * float64(s.X0+s.X1) / 2
		m.M01 += n * float64(s.Y)
	}
	return m
}

// DiscretizationError относительное расхождение площади по формуле шнурков
// и числа пикселей: |A - N| / N. Для простого контура N - A = len/2 + 1.
func DiscretizationError(m entity.Measurement) float64 {
	if m.PixelArea == 0 {
		return 0
	}
	return math.Abs(m.Area-float64(m.PixelArea)) / float64(m.PixelArea)
}
