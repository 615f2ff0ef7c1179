// Package report форматирует таблицу измерений зёрен.
package report

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"

	"grain-analyzer/internal/domain/entity"
	"grain-analyzer/internal/domain/port"
)

// TableFormatter выводит зёрна таблицей с итоговой строкой.
type TableFormatter struct {
	// MaxRows ограничивает число строк таблицы; 0 выводит все зёрна.
	MaxRows int
}

func NewTableFormatter(maxRows int) *TableFormatter {
	return &TableFormatter{MaxRows: maxRows}
}

func (f *TableFormatter) Format(result *entity.LabeledResult) string {
	if result == nil {
		return ""
	}

	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("%s %dx%d, %s", result.Profile.Phase, result.Width, result.Height, result.Profile.Trace))
	t.AppendHeader(table.Row{"#", "Perimeter", "Area", "Pixels", "Centroid", "Holes"})

	rows := result.Grains
	if f.MaxRows > 0 && len(rows) > f.MaxRows {
		rows = rows[:f.MaxRows]
	}
	for _, g := range rows {
		m := g.Measurement
		t.AppendRow(table.Row{
			g.Label,
			fmt.Sprintf("%.2f", m.Perimeter),
			fmt.Sprintf("%.1f", m.Area),
			m.PixelArea,
			fmt.Sprintf("(%.1f, %.1f)", m.Centroid.X, m.Centroid.Y),
			g.Holes,
		})
	}
	if hidden := len(result.Grains) - len(rows); hidden > 0 {
		t.AppendRow(table.Row{"…", fmt.Sprintf("+%d", hidden), "", "", "", ""})
	}

	s := result.Summary
	t.AppendFooter(table.Row{
		fmt.Sprintf("n=%d", s.Count),
		fmt.Sprintf("%.2f", s.TotalPerimeter),
		fmt.Sprintf("%.1f", s.TotalArea),
		s.TotalPixelArea,
		fmt.Sprintf("mean %.1f ± %.1f", s.MeanArea, s.AreaStdDev),
		lo.SumBy(result.Grains, func(g entity.Grain) int { return g.Holes }),
	})

	out := t.Render()
	out += fmt.Sprintf("\nphase fraction: %.2f%%", s.AreaFraction*100)
	if n := len(result.Warnings); n > 0 {
		out += fmt.Sprintf("\ndegenerate contours: %d", n)
	}
	return out
}

// Проверка реализации интерфейса
var _ port.ReportFormatter = (*TableFormatter)(nil)
