package port

import "grain-analyzer/internal/domain/entity"

// ReportFormatter интерфейс форматирования таблицы измерений
type ReportFormatter interface {
	// Format возвращает текстовую таблицу зёрен с итогами
	Format(result *entity.LabeledResult) string
}
