//go:build gocv
// +build gocv

package vision

import (
	"image"

	"gocv.io/x/gocv"

	"grain-analyzer/internal/domain/entity"
	"grain-analyzer/internal/infrastructure/vision/raster"
)

// ReferenceContours трассирует маску средствами OpenCV без аппроксимации точек.
// Используется для сверки собственного трассировщика.
func ReferenceContours(m *raster.Mask, mode entity.TraceMode) ([]entity.Contour, error) {
	if m == nil || m.Width <= 0 || m.Height <= 0 {
		return nil, entity.NewInvalidInput("zero-sized mask")
	}

	mat, err := gocv.NewMatFromBytes(m.Height, m.Width, gocv.MatTypeCV8U, m.ToGray().Pix)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	retrieval := gocv.RetrievalExternal
	if mode == entity.TraceTree {
		retrieval = gocv.RetrievalTree
	}

	hierarchy := gocv.NewMat()
	defer hierarchy.Close()
	found := gocv.FindContoursWithParams(mat, &hierarchy, retrieval, gocv.ChainApproxNone)
	defer found.Close()

	out := make([]entity.Contour, 0, found.Size())
	for i := 0; i < found.Size(); i++ {
		pv := found.At(i)
		kind := entity.KindOuter
		// для RetrievalTree дыры лежат на нечётной глубине
		if mode == entity.TraceTree && depth(hierarchy, i)%2 == 1 {
			kind = entity.KindHole
		}
		pts := pv.ToPoints()
		c := entity.Contour{Kind: kind, Points: make([]entity.Point, len(pts))}
		for j, p := range pts {
			c.Points[j] = entity.Point{X: p.X, Y: p.Y}
		}
		out = append(out, c)
	}
	return out, nil
}

// ReferenceArea площадь контура по OpenCV.
func ReferenceArea(c entity.Contour) float64 {
	pts := make([]image.Point, len(c.Points))
	for i, p := range c.Points {
		pts[i] = p.ImagePoint()
	}
	pv := gocv.NewPointVectorFromPoints(pts)
	defer pv.Close()
	return gocv.ContourArea(pv)
}

// depth глубина контура i в иерархии OpenCV (next, prev, child, parent).
func depth(hierarchy gocv.Mat, i int) int {
	d := 0
	for p := hierarchy.GetVeciAt(0, i)[3]; p >= 0; p = hierarchy.GetVeciAt(0, int(p))[3] {
		d++
	}
	return d
}
