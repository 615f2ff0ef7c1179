// Package vision собирает конвейер анализа зёрен: бинаризация, морфология,
// трассировка контуров, измерения, фильтр и разметка.
package vision

import (
	"context"
	"image"

	"github.com/samber/lo"

	"grain-analyzer/internal/domain/entity"
	"grain-analyzer/internal/domain/port"
	"grain-analyzer/internal/infrastructure/vision/contour"
	"grain-analyzer/internal/infrastructure/vision/label"
	"grain-analyzer/internal/infrastructure/vision/measure"
	"grain-analyzer/internal/infrastructure/vision/morph"
	"grain-analyzer/internal/infrastructure/vision/raster"
	"grain-analyzer/internal/logger"
)

const component = "vision"

// Engine анализирует один снимок за вызов. Состояния между вызовами нет,
// поэтому один Engine можно использовать из нескольких горутин.
type Engine struct {
	log logger.Logger
}

func NewEngine(log logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{log: log}
}

func (e *Engine) Analyze(ctx context.Context, gray *image.Gray, cfg entity.AnalysisConfig) (*entity.LabeledResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := raster.ValidateGray(gray); err != nil {
		return nil, err
	}
	profile := cfg.Profile()
	e.log.Debug(component, "profile resolved", logger.Fields{"profile": profile.String()})

	mask, err := raster.Binarize(gray, profile.Threshold)
	if err != nil {
		return nil, err
	}
	mask, err = e.prepare(mask, profile)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	set, err := contour.Trace(mask)
	if err != nil {
		return nil, err
	}
	view := set.View(profile.Trace)
	foreground, area := mask.Count(), mask.Bounds()
	if profile.Framed {
		view = set.FramedView(profile.Trace)
		// кольцо по краю кадра не относится к фазе
		area = area.Inset(profile.ExpansionRadius)
		foreground = mask.CountIn(area)
	}
	e.log.Debug(component, "contours traced", logger.Fields{"total": len(set.Contours), "selected": len(view)})

	candidates := lo.Map(view, func(i int, _ int) label.Candidate {
		return label.Candidate{Index: i, Measurement: measure.Measure(set.Contours[i])}
	})

	var warnings []entity.DegenerateContourWarning
	for _, c := range candidates {
		if reason, ok := measure.Degenerate(c.Measurement); ok {
			warnings = append(warnings, entity.DegenerateContourWarning{ContourIndex: c.Index, Reason: reason})
			e.log.Debug(component, "degenerate contour", logger.Fields{"contour": c.Index, "reason": string(reason)})
		}
	}

	grains := label.FilterAndLabel(set, candidates, profile.MinContourArea)
	result := &entity.LabeledResult{
		Width:    mask.Width,
		Height:   mask.Height,
		Profile:  profile,
		Grains:   grains,
		Summary:  Summarize(grains, foreground, area.Dx(), area.Dy()),
		Warnings: warnings,
		Contours: set,
		Image:    label.Render(mask.Width, mask.Height, grains),
	}

	e.log.Info(component, "analysis finished", logger.Fields{
		"phase":      string(profile.Phase),
		"grains":     result.Summary.Count,
		"total_area": result.Summary.TotalArea,
		"warnings":   len(warnings),
	})
	return result, nil
}

// prepare применяет морфологию фазы к маске.
func (e *Engine) prepare(mask *raster.Mask, p entity.Profile) (*raster.Mask, error) {
	switch {
	case p.Expand:
		e.log.Debug(component, "ferrite expansion", logger.Fields{"radius": p.ExpansionRadius})
		return morph.Expand(mask, p.ExpansionRadius)
	case p.Denoise:
		e.log.Debug(component, "perlite denoise", logger.Fields{"kernel": p.DenoiseKernel, "cutoff": p.DenoiseCutoff})
		return morph.Denoise(mask, p.DenoiseKernel, p.DenoiseCutoff)
	default:
		return mask, nil
	}
}

// Проверка реализации интерфейса
var _ port.GrainAnalyzer = (*Engine)(nil)
