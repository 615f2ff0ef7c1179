package entity

import (
	"image"

	"github.com/golang/geo/r2"
)

// Moments сырые моменты залитой области контура
type Moments struct {
	M00 float64 // число пикселей
	M10 float64 // сумма X
	M01 float64 // сумма Y
}

// Measurement геометрия одного контура. Только для чтения.
type Measurement struct {
	Perimeter float64  // длина замкнутой ломаной по центрам пикселей
	Area      float64  // площадь по формуле шнурков
	PixelArea int      // число пикселей залитого контура
	Moments   Moments  // сырые моменты залитой области
	Centroid  r2.Point // M10/M00, M01/M00; (0,0) при M00 == 0
}

// CentroidPixel возвращает пиксель, в котором лежит центр масс.
func (m Measurement) CentroidPixel() image.Point {
	return image.Pt(int(m.Centroid.X), int(m.Centroid.Y))
}

// DegenerateReason причина вырожденности контура
type DegenerateReason string

const (
	ReasonZeroArea   DegenerateReason = "zero_area"   // линия или одиночный пиксель
	ReasonZeroMoment DegenerateReason = "zero_moment" // M00 == 0, центр масс заменён на (0,0)
)

// DegenerateContourWarning нефатальное замечание о контуре; обработка продолжается.
type DegenerateContourWarning struct {
	ContourIndex int
	Reason       DegenerateReason
}

// Grain выживший после фильтра контур с меткой.
type Grain struct {
	Label        int // с 1, в порядке обнаружения
	ContourIndex int // индекс в ContourSet.Contours
	Contour      Contour
	Measurement  Measurement
	Holes        int // число непосредственно вложенных дыр
}

// Center возвращает пиксель для подписи метки.
func (g Grain) Center() (x, y int) {
	p := g.Measurement.CentroidPixel()
	return p.X, p.Y
}

// Summary агрегаты таблицы измерений
type Summary struct {
	Count          int
	TotalArea      float64
	TotalPerimeter float64
	TotalPixelArea int
	MeanArea       float64
	AreaStdDev     float64
	AreaFraction   float64 // доля пикселей переднего плана обработанной маски
}

// LabeledResult итог анализа одного изображения
type LabeledResult struct {
	Width    int
	Height   int
	Profile  Profile
	Grains   []Grain
	Summary  Summary
	Warnings []DegenerateContourWarning
	Contours ContourSet  // полный результат трассировки для инспекции
	Image    *image.RGBA // размеченное изображение
}

// HasGrains сообщает, найдено ли хотя бы одно зерно.
func (r *LabeledResult) HasGrains() bool {
	return r != nil && len(r.Grains) > 0
}

// Perimeters возвращает периметры зёрен в порядке меток.
func (r *LabeledResult) Perimeters() []float64 {
	out := make([]float64, len(r.Grains))
	for i, g := range r.Grains {
		out[i] = g.Measurement.Perimeter
	}
	return out
}

// Areas возвращает площади зёрен в порядке меток.
func (r *LabeledResult) Areas() []float64 {
	out := make([]float64, len(r.Grains))
	for i, g := range r.Grains {
		out[i] = g.Measurement.Area
	}
	return out
}
