//go:build !gocv
// +build !gocv

package vision

import (
	"errors"

	"grain-analyzer/internal/domain/entity"
	"grain-analyzer/internal/infrastructure/vision/raster"
)

// ErrReferenceUnavailable возвращается, если сборка без тега gocv.
var ErrReferenceUnavailable = errors.New("gocv build tag is not enabled")

// ReferenceContours возвращает ошибку, если сборка без тега gocv.
func ReferenceContours(m *raster.Mask, mode entity.TraceMode) ([]entity.Contour, error) {
	_ = m
	_ = mode
	return nil, ErrReferenceUnavailable
}

// ReferenceArea возвращает ноль, если сборка без тега gocv.
func ReferenceArea(c entity.Contour) float64 {
	_ = c
	return 0
}
