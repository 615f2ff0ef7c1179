// Package label отбирает контуры по площади, нумерует их и рисует размеченное изображение.
package label

import (
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font/basicfont"

	"grain-analyzer/internal/domain/entity"
	"grain-analyzer/internal/infrastructure/vision/contour"
)

// Шаг оттенка между соседними метками, золотой угол в градусах.
const goldenAngle = 137.508

// TextColor цвет подписи метки.
var TextColor = color.RGBA{R: 255, G: 255, B: 0, A: 255}

// Candidate контур, прошедший трассировку и измерение.
type Candidate struct {
	Index       int // индекс в ContourSet.Contours
	Measurement entity.Measurement
}

// FilterAndLabel отбрасывает кандидатов с площадью меньше minArea и нумерует
// оставшихся с 1 в порядке кандидатов. Измерения копируются без изменений.
func FilterAndLabel(set entity.ContourSet, candidates []Candidate, minArea float64) []entity.Grain {
	grains := make([]entity.Grain, 0, len(candidates))
	for _, c := range candidates {
		if c.Measurement.Area < minArea {
			continue
		}
		grains = append(grains, entity.Grain{
			Label:        len(grains) + 1,
			ContourIndex: c.Index,
			Contour:      set.Contours[c.Index],
			Measurement:  c.Measurement,
			Holes:        set.HoleCount(c.Index),
		})
	}
	return grains
}

// Palette возвращает цвет заливки для метки. Одной метке всегда соответствует один цвет.
func Palette(label int) color.RGBA {
	h := math.Mod(float64(label)*goldenAngle, 360)
	r, g, b := colorful.Hsv(h, 0.65, 0.95).RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Render рисует зёрна на изначально нулевом растре размера width x height:
// заливка цветом метки, затем номер метки в пикселе центра масс.
func Render(width, height int, grains []entity.Grain) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for _, g := range grains {
		fill := Palette(g.Label)
		for _, s := range contour.Fill(g.Contour) {
			for x := s.X0; x <= s.X1; x++ {
				img.SetRGBA(x, s.Y, fill)
			}
		}
	}

	if len(grains) == 0 {
		return img
	}

	dc := gg.NewContextForRGBA(img)
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(TextColor)
	for _, g := range grains {
		x, y := g.Center()
		dc.DrawStringAnchored(strconv.Itoa(g.Label), float64(x), float64(y), 0.5, 0.5)
	}
	return img
}
