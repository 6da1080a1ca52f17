package projection

import (
	"sort"

	"github.com/mohammed-shakir/incident-explorer/internal/core/model"
)

type yearMonth struct {
	year  int
	month model.Month
}

// MonthlySeries counts records per (year, month), ordered by calendar month
// and then year. Months without records are omitted, never zero-filled.
func MonthlySeries(records []model.Record) []model.MonthCount {
	counts := make(map[yearMonth]int)
	for _, r := range records {
		counts[yearMonth{r.Year, r.Month}]++
	}

	out := make([]model.MonthCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, model.MonthCount{Year: k.year, Month: k.month, Count: n})
	}
	SortByMonth(out)
	return out
}

// SortByMonth orders rows by calendar month ordinal, never by name.
func SortByMonth(rows []model.MonthCount) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Month != rows[j].Month {
			return rows[i].Month < rows[j].Month
		}
		return rows[i].Year < rows[j].Year
	})
}
