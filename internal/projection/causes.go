package projection

import (
	"sort"

	"github.com/mohammed-shakir/incident-explorer/internal/core/model"
)

type yearCause struct {
	year  int
	cause string
}

// CauseFrequency counts records per (year, cause). Rows are ordered by count
// descending; equal counts keep year ascending, then the order in which the
// cause first appeared. Absent combinations produce no row.
func CauseFrequency(records []model.Record) []model.CauseCount {
	counts := make(map[yearCause]int)
	causeRank := make(map[string]int)
	for _, r := range records {
		k := yearCause{r.Year, r.Cause}
		counts[k]++
		if _, ok := causeRank[r.Cause]; !ok {
			causeRank[r.Cause] = len(causeRank)
		}
	}

	out := make([]model.CauseCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, model.CauseCount{
			YearLabel: model.YearLabel(k.year),
			Year:      k.year,
			Cause:     k.cause,
			Count:     n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return causeRank[a.Cause] < causeRank[b.Cause]
	})
	return out
}
