package vision

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"grain-analyzer/internal/domain/entity"
)

// Summarize считает итоги таблицы измерений. Доля фазы считается по числу
// пикселей переднего плана обработанной маски (foreground).
func Summarize(grains []entity.Grain, foreground, width, height int) entity.Summary {
	s := entity.Summary{Count: len(grains)}
	if width > 0 && height > 0 {
		s.AreaFraction = float64(foreground) / float64(width*height)
	}
	if len(grains) == 0 {
		return s
	}

	areas := make([]float64, len(grains))
	perimeters := make([]float64, len(grains))
	for i, g := range grains {
		areas[i] = g.Measurement.Area
		perimeters[i] = g.Measurement.Perimeter
		s.TotalPixelArea += g.Measurement.PixelArea
	}
	s.TotalArea = floats.Sum(areas)
	s.TotalPerimeter = floats.Sum(perimeters)
	s.MeanArea, s.AreaStdDev = stat.MeanStdDev(areas, nil)
	if len(grains) < 2 {
		s.AreaStdDev = 0
	}
	return s
}
