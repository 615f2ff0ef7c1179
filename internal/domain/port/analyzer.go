package port

import (
	"context"
	"image"

	"grain-analyzer/internal/domain/entity"
)

// GrainAnalyzer конвейер количественного анализа зёрен
type GrainAnalyzer interface {
	// Analyze бинаризует снимок, выделяет зёрна и возвращает измерения с размеченным изображением.
	// Ошибки конфигурации и входных данных прерывают анализ до обработки пикселей.
	Analyze(ctx context.Context, gray *image.Gray, cfg entity.AnalysisConfig) (*entity.LabeledResult, error)
}
