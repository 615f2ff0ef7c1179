// Package metrics сравнивает бинарные маски (предсказанная и эталонная сегментация).
package metrics

import (
	"grain-analyzer/internal/domain/entity"
	"grain-analyzer/internal/infrastructure/vision/raster"
)

// DefaultSmooth сглаживание, при котором две пустые маски совпадают полностью.
const DefaultSmooth = 1.0

// Agreement число пикселей переднего плана в масках и их пересечении.
type Agreement struct {
	Predicted    int
	Truth        int
	Intersection int
}

// Compare подсчитывает пересечение масок одинакового размера.
func Compare(pred, truth *raster.Mask) (Agreement, error) {
	if pred == nil || truth == nil {
		return Agreement{}, entity.NewInvalidInput("nil mask")
	}
	if pred.Width != truth.Width || pred.Height != truth.Height {
		return Agreement{}, entity.NewInvalidInput("mask sizes differ: %dx%d vs %dx%d",
			pred.Width, pred.Height, truth.Width, truth.Height)
	}

	var a Agreement
	for i, p := range pred.Pix {
		t := truth.Pix[i]
		if p {
			a.Predicted++
		}
		if t {
			a.Truth++
		}
		if p && t {
			a.Intersection++
		}
	}
	return a, nil
}

// Dice коэффициент (2|A∩B| + s) / (|A| + |B| + s).
func (a Agreement) Dice(smooth float64) float64 {
	return (2*float64(a.Intersection) + smooth) / (float64(a.Predicted+a.Truth) + smooth)
}

// IoU коэффициент (|A∩B| + s) / (|A∪B| + s).
func (a Agreement) IoU(smooth float64) float64 {
	union := a.Predicted + a.Truth - a.Intersection
	return (float64(a.Intersection) + smooth) / (float64(union) + smooth)
}
