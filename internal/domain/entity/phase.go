package entity

import (
	"fmt"
	"strings"
)

// PhaseMode тип анализируемой фазы
type PhaseMode string

const (
	PhaseFerrite PhaseMode = "ferrite" // Феррит: светлые зёрна, опциональное расширение границ
	PhasePerlite PhaseMode = "perlite" // Перлит: тёмные участки, обязательное подавление шума
)

// ParsePhaseMode разбирает название фазы без учёта регистра.
func ParsePhaseMode(s string) (PhaseMode, error) {
	switch PhaseMode(strings.ToLower(strings.TrimSpace(s))) {
	case PhaseFerrite:
		return PhaseFerrite, nil
	case PhasePerlite:
		return PhasePerlite, nil
	default:
		return "", NewConfigurationError("phase", "unknown phase %q", s)
	}
}

func (p PhaseMode) String() string {
	return string(p)
}

// TraceMode режим выборки контуров
type TraceMode string

const (
	TraceDefault  TraceMode = ""         // Режим выбирает фаза
	TraceExternal TraceMode = "external" // Только внешние границы
	TraceTree     TraceMode = "tree"     // Все границы, включая дыры
)

// ParseTraceMode разбирает режим выборки контуров; пустая строка и "default" дают TraceDefault.
func ParseTraceMode(s string) (TraceMode, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "", "default":
		return TraceDefault, nil
	case string(TraceExternal):
		return TraceExternal, nil
	case string(TraceTree):
		return TraceTree, nil
	default:
		return "", NewConfigurationError("trace_mode", "unknown trace mode %q", s)
	}
}

func (m TraceMode) String() string {
	if m == TraceDefault {
		return "default"
	}
	return string(m)
}

// Profile описывает набор параметров конвейера, вычисленный один раз по фазе и конфигурации.
type Profile struct {
	Phase           PhaseMode
	Threshold       uint8
	Expand          bool
	ExpansionRadius int
	Denoise         bool
	DenoiseKernel   int
	DenoiseCutoff   uint8
	Trace           TraceMode
	Framed          bool // край кадра залит кольцом шириной ExpansionRadius
	MinContourArea  float64
}

func (p Profile) String() string {
	return fmt.Sprintf("phase=%s threshold=%d expand=%t(r=%d) denoise=%t(k=%d,cutoff=%d) trace=%s framed=%t min_area=%g",
		p.Phase, p.Threshold, p.Expand, p.ExpansionRadius, p.Denoise, p.DenoiseKernel, p.DenoiseCutoff, p.Trace, p.Framed, p.MinContourArea)
}
