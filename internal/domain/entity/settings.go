package entity

import (
	"math"

	"go.uber.org/multierr"
)

const (
	DefaultThreshold      = 128 // глобальный порог бинаризации
	DefaultMinContourArea = 3   // минимальная площадь контура
	DefaultDenoiseKernel  = 3   // окно гауссова сглаживания перлита
	DefaultDenoiseCutoff  = 200 // повторный порог после сглаживания
)

// AnalysisConfig параметры одного запуска анализа.
// Значение собирает вызывающий код; после передачи в конвейер оно не меняется.
type AnalysisConfig struct {
	Phase           PhaseMode
	Threshold       int
	ExpansionRadius *int // только для феррита; nil: без расширения
	MinContourArea  float64
	TraceMode       TraceMode
	DenoiseKernel   int // только для перлита
	DenoiseCutoff   int // только для перлита
}

// DefaultAnalysisConfig возвращает конфигурацию по умолчанию для фазы.
func DefaultAnalysisConfig(phase PhaseMode) AnalysisConfig {
	return AnalysisConfig{
		Phase:          phase,
		Threshold:      DefaultThreshold,
		MinContourArea: DefaultMinContourArea,
		TraceMode:      TraceDefault,
		DenoiseKernel:  DefaultDenoiseKernel,
		DenoiseCutoff:  DefaultDenoiseCutoff,
	}
}

// WithExpansion возвращает копию конфигурации с радиусом расширения.
func (c AnalysisConfig) WithExpansion(radius int) AnalysisConfig {
	r := radius
	c.ExpansionRadius = &r
	return c
}

// Validate проверяет все поля и возвращает объединение ошибок конфигурации.
func (c AnalysisConfig) Validate() error {
	var err error

	if c.Phase != PhaseFerrite && c.Phase != PhasePerlite {
		err = multierr.Append(err, NewConfigurationError("phase", "unknown phase %q", c.Phase))
	}
	if c.Threshold < 0 || c.Threshold > 255 {
		err = multierr.Append(err, NewConfigurationError("threshold", "%d is outside [0,255]", c.Threshold))
	}
	if math.IsNaN(c.MinContourArea) || c.MinContourArea < 0 {
		err = multierr.Append(err, NewConfigurationError("min_contour_area", "%v must be a non-negative number", c.MinContourArea))
	}
	if c.TraceMode != TraceDefault && c.TraceMode != TraceExternal && c.TraceMode != TraceTree {
		err = multierr.Append(err, NewConfigurationError("trace_mode", "unknown trace mode %q", c.TraceMode))
	}

	if c.ExpansionRadius != nil {
		if c.Phase == PhasePerlite {
			err = multierr.Append(err, NewConfigurationError("expansion_radius", "is supported for ferrite only"))
		}
		if *c.ExpansionRadius < 0 {
			err = multierr.Append(err, NewConfigurationError("expansion_radius", "%d must be non-negative", *c.ExpansionRadius))
		}
	}

	if c.Phase == PhasePerlite {
		err = multierr.Append(err, c.ValidateDenoise())
	}

	return err
}

// ValidateDenoise проверяет параметры подавления шума перлита независимо от фазы.
func (c AnalysisConfig) ValidateDenoise() error {
	var err error
	if c.DenoiseKernel < 1 || c.DenoiseKernel%2 == 0 {
		err = multierr.Append(err, NewConfigurationError("denoise_kernel", "%d must be a positive odd size", c.DenoiseKernel))
	}
	if c.DenoiseCutoff < 0 || c.DenoiseCutoff > 255 {
		err = multierr.Append(err, NewConfigurationError("denoise_cutoff", "%d is outside [0,255]", c.DenoiseCutoff))
	}
	return err
}

// Profile сводит фазу и параметры к фиксированному набору настроек конвейера.
// Конфигурация должна быть заранее проверена Validate.
func (c AnalysisConfig) Profile() Profile {
	p := Profile{
		Phase:          c.Phase,
		Threshold:      uint8(c.Threshold),
		Trace:          c.TraceMode,
		MinContourArea: c.MinContourArea,
	}

	switch c.Phase {
	case PhaseFerrite:
		if c.ExpansionRadius != nil {
			p.Expand = true
			p.ExpansionRadius = *c.ExpansionRadius
		}
	case PhasePerlite:
		p.Denoise = true
		p.DenoiseKernel = c.DenoiseKernel
		p.DenoiseCutoff = uint8(c.DenoiseCutoff)
	}

	if p.Trace == TraceDefault {
		p.Trace = TraceExternal
	}
	// расширение заливает кольцо шириной r по краю кадра; зёрна лежат в его дырах
	p.Framed = p.Expand && p.ExpansionRadius > 0

	return p
}
