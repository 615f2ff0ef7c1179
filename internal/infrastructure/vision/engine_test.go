package vision

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"grain-analyzer/internal/domain/entity"
	"grain-analyzer/internal/logger"
)

func grayRect(img *image.Gray, x0, y0, w, h int, v uint8) {
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
}

func newGray(w, h int, bg uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	grayRect(img, 0, 0, w, h, bg)
	return img
}

func analyze(t *testing.T, gray *image.Gray, cfg entity.AnalysisConfig) *entity.LabeledResult {
	t.Helper()
	res, err := NewEngine(logger.Nop()).Analyze(context.Background(), gray, cfg)
	require.NoError(t, err)
	require.Equal(t, gray.Bounds().Dx(), res.Image.Bounds().Dx())
	require.Equal(t, gray.Bounds().Dy(), res.Image.Bounds().Dy())
	return res
}

func TestEngine_SingleSquare(t *testing.T) {
	gray := newGray(100, 100, 0)
	grayRect(gray, 30, 40, 20, 20, 255)

	res := analyze(t, gray, entity.DefaultAnalysisConfig(entity.PhaseFerrite))
	require.Len(t, res.Grains, 1)
	require.Empty(t, res.Warnings)

	g := res.Grains[0]
	require.Equal(t, 1, g.Label)
	require.InDelta(t, 80, g.Measurement.Perimeter, 4)
	require.InDelta(t, 400, g.Measurement.Area, g.Measurement.Perimeter/2+1)
	require.Equal(t, 400, g.Measurement.PixelArea)
	require.InDelta(t, 40, g.Measurement.Centroid.X, 1)
	require.InDelta(t, 50, g.Measurement.Centroid.Y, 1)

	require.Equal(t, 1, res.Summary.Count)
	require.Equal(t, g.Measurement.Area, res.Summary.TotalArea)
	require.Equal(t, 400, res.Summary.TotalPixelArea)
	require.InDelta(t, 0.04, res.Summary.AreaFraction, 1e-12)
	require.Zero(t, res.Summary.AreaStdDev)
}

func TestEngine_AllBackground(t *testing.T) {
	res := analyze(t, newGray(100, 100, 0), entity.DefaultAnalysisConfig(entity.PhaseFerrite))
	require.False(t, res.HasGrains())
	require.Empty(t, res.Contours.Contours)
	require.Empty(t, res.Warnings)
	require.Zero(t, res.Summary.Count)
	require.Equal(t, make([]uint8, 100*100*4), res.Image.Pix)
}

func TestEngine_Deterministic(t *testing.T) {
	gray := newGray(120, 90, 0)
	grayRect(gray, 10, 10, 30, 25, 200)
	grayRect(gray, 18, 16, 6, 6, 0)
	grayRect(gray, 60, 12, 12, 40, 255)
	grayRect(gray, 80, 60, 25, 20, 140)
	gray.SetGray(5, 80, color.Gray{Y: 255})

	cfg := entity.DefaultAnalysisConfig(entity.PhaseFerrite)
	cfg.TraceMode = entity.TraceTree

	a := analyze(t, gray, cfg)
	b := analyze(t, gray, cfg)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("results differ (-first +second):\n%s", diff)
	}
	require.Equal(t, a.Image.Pix, b.Image.Pix)
}

func TestEngine_ConfigurationCheckedBeforeInput(t *testing.T) {
	cfg := entity.DefaultAnalysisConfig(entity.PhaseFerrite)
	cfg.Threshold = 300

	_, err := NewEngine(nil).Analyze(context.Background(), nil, cfg)
	require.True(t, entity.IsConfigurationError(err))
	require.False(t, entity.IsInvalidInput(err))
}

func TestEngine_InvalidInput(t *testing.T) {
	cfg := entity.DefaultAnalysisConfig(entity.PhasePerlite)

	_, err := NewEngine(nil).Analyze(context.Background(), image.NewGray(image.Rect(0, 0, 0, 10)), cfg)
	require.True(t, entity.IsInvalidInput(err))
}

func TestEngine_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(nil).Analyze(ctx, newGray(10, 10, 0), entity.DefaultAnalysisConfig(entity.PhaseFerrite))
	require.ErrorIs(t, err, context.Canceled)
}

func TestEngine_PerliteDenoise(t *testing.T) {
	// перлит: тёмные участки на светлом фоне
	gray := newGray(100, 100, 255)
	grayRect(gray, 30, 40, 20, 20, 0)
	grayRect(gray, 5, 5, 1, 1, 0)
	grayRect(gray, 80, 10, 2, 2, 0)

	res := analyze(t, gray, entity.DefaultAnalysisConfig(entity.PhasePerlite))
	require.Len(t, res.Grains, 1)
	require.True(t, res.Profile.Denoise)

	// сглаживание 3x3 и порог 200 снимают по пикселю с каждой стороны
	g := res.Grains[0]
	require.Equal(t, 18*18, g.Measurement.PixelArea)
	require.InDelta(t, 39.5, g.Measurement.Centroid.X, 1e-9)
	require.InDelta(t, 49.5, g.Measurement.Centroid.Y, 1e-9)
}

func TestEngine_FerriteExpansion(t *testing.T) {
	gray := newGray(40, 20, 0)
	grayRect(gray, 5, 5, 10, 10, 255)
	grayRect(gray, 25, 5, 10, 10, 255)
	grayRect(gray, 15, 9, 10, 1, 255)

	plain := analyze(t, gray, entity.DefaultAnalysisConfig(entity.PhaseFerrite))
	require.Len(t, plain.Grains, 1)

	res := analyze(t, gray, entity.DefaultAnalysisConfig(entity.PhaseFerrite).WithExpansion(1))
	require.Equal(t, entity.TraceExternal, res.Profile.Trace)
	require.True(t, res.Profile.Framed)
	// кольцо по краю кадра и его дыра в таблицу не попадают
	frame, ok := res.Contours.Frame()
	require.True(t, ok)
	require.Equal(t, 0, frame)
	require.Len(t, res.Grains, 2)
	for i, g := range res.Grains {
		require.Equal(t, i+1, g.Label)
		require.Equal(t, entity.KindOuter, g.Contour.Kind)
		require.Equal(t, 100, g.Measurement.PixelArea)
	}
	require.Equal(t, entity.Point{X: 5, Y: 5}, res.Grains[0].Contour.Points[0])
	require.Equal(t, entity.Point{X: 25, Y: 5}, res.Grains[1].Contour.Points[0])
	require.Equal(t, 200, res.Summary.TotalPixelArea)
	require.InDelta(t, 200.0/(38*18), res.Summary.AreaFraction, 1e-12)
}

func TestEngine_FerriteExpansionTreeSkipsFrame(t *testing.T) {
	gray := newGray(40, 40, 0)
	grayRect(gray, 8, 8, 20, 20, 255)
	grayRect(gray, 14, 14, 6, 6, 0)

	cfg := entity.DefaultAnalysisConfig(entity.PhaseFerrite).WithExpansion(1)
	cfg.TraceMode = entity.TraceTree
	res := analyze(t, gray, cfg)
	require.Len(t, res.Grains, 2)
	require.Equal(t, entity.KindOuter, res.Grains[0].Contour.Kind)
	require.Equal(t, entity.Point{X: 8, Y: 8}, res.Grains[0].Contour.Points[0])
	require.Equal(t, 1, res.Grains[0].Holes)
	require.Equal(t, entity.KindHole, res.Grains[1].Contour.Kind)
}

func TestEngine_TreeModeLabelsHoles(t *testing.T) {
	gray := newGray(40, 40, 0)
	grayRect(gray, 5, 5, 20, 20, 255)
	grayRect(gray, 10, 10, 6, 6, 0)

	external := analyze(t, gray, entity.DefaultAnalysisConfig(entity.PhaseFerrite))
	require.Len(t, external.Grains, 1)
	require.Equal(t, 1, external.Grains[0].Holes)
	require.Equal(t, 400, external.Grains[0].Measurement.PixelArea)

	cfg := entity.DefaultAnalysisConfig(entity.PhaseFerrite)
	cfg.TraceMode = entity.TraceTree
	tree := analyze(t, gray, cfg)
	require.Len(t, tree.Grains, 2)
	require.Equal(t, entity.KindHole, tree.Grains[1].Contour.Kind)
	require.Equal(t, 2, tree.Grains[1].Label)
}

func TestEngine_TreeLabelsFollowTopmostPoint(t *testing.T) {
	gray := newGray(20, 10, 0)
	grayRect(gray, 0, 0, 5, 5, 255)
	grayRect(gray, 1, 1, 3, 3, 0)
	grayRect(gray, 10, 0, 3, 3, 255)

	cfg := entity.DefaultAnalysisConfig(entity.PhaseFerrite)
	cfg.TraceMode = entity.TraceTree
	res := analyze(t, gray, cfg)
	require.Len(t, res.Grains, 3)
	require.Equal(t, entity.KindHole, res.Grains[1].Contour.Kind)
	require.Equal(t, 2, res.Grains[1].Label)
	require.Equal(t, entity.Point{X: 10, Y: 0}, res.Grains[2].Contour.Points[0])
	require.Equal(t, 3, res.Grains[2].Label)
}

func TestEngine_DegenerateContoursAreReported(t *testing.T) {
	gray := newGray(30, 30, 0)
	gray.SetGray(3, 3, color.Gray{Y: 255})
	grayRect(gray, 10, 10, 8, 1, 255)

	res := analyze(t, gray, entity.DefaultAnalysisConfig(entity.PhaseFerrite))
	require.Empty(t, res.Grains)
	require.Equal(t, []entity.DegenerateContourWarning{
		{ContourIndex: 0, Reason: entity.ReasonZeroArea},
		{ContourIndex: 1, Reason: entity.ReasonZeroArea},
	}, res.Warnings)

	cfg := entity.DefaultAnalysisConfig(entity.PhaseFerrite)
	cfg.MinContourArea = 0
	kept := analyze(t, gray, cfg)
	require.Len(t, kept.Grains, 2)
	require.Len(t, kept.Warnings, 2)
	require.Equal(t, 3.0, kept.Grains[0].Measurement.Centroid.X)
}

func TestEngine_MinAreaMonotonic(t *testing.T) {
	gray := newGray(80, 80, 0)
	for i, side := range []int{2, 3, 5, 8, 12} {
		grayRect(gray, 2+i*15, 2+i*15, side, side, 255)
	}

	prev := -1
	for _, minArea := range []float64{0, 1, 4, 16, 49, 121, 1000} {
		cfg := entity.DefaultAnalysisConfig(entity.PhaseFerrite)
		cfg.MinContourArea = minArea
		n := len(analyze(t, gray, cfg).Grains)
		if prev >= 0 {
			require.LessOrEqual(t, n, prev)
		}
		prev = n
	}
}

func TestSummarize(t *testing.T) {
	grains := []entity.Grain{
		{Measurement: entity.Measurement{Area: 10, Perimeter: 12, PixelArea: 20}},
		{Measurement: entity.Measurement{Area: 30, Perimeter: 24, PixelArea: 42}},
	}
	s := Summarize(grains, 70, 10, 10)
	require.Equal(t, 2, s.Count)
	require.Equal(t, 40.0, s.TotalArea)
	require.Equal(t, 36.0, s.TotalPerimeter)
	require.Equal(t, 62, s.TotalPixelArea)
	require.Equal(t, 20.0, s.MeanArea)
	require.InDelta(t, 14.142135623730951, s.AreaStdDev, 1e-9)
	require.Equal(t, 0.7, s.AreaFraction)

	empty := Summarize(nil, 0, 10, 10)
	require.Zero(t, empty.Count)
	require.Zero(t, empty.MeanArea)
}
