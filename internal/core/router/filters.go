package router

import (
	"net/http"
	"time"

	"github.com/mohammed-shakir/incident-explorer/internal/core/model"
	"github.com/mohammed-shakir/incident-explorer/internal/core/observability"
	"github.com/mohammed-shakir/incident-explorer/internal/filter"
)

// OptionSource is the dataset view behind the selector options.
type OptionSource interface {
	filter.Catalog
	Years() []int
	DistinctCauses() []string
}

type hourRange struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

type defaultsBody struct {
	Year          int                 `json:"year"`
	Districts     []string            `json:"districts"`
	Weekdays      []model.Weekday     `json:"weekdays"`
	Hours         hourRange           `json:"hours"`
	AgeCategories []model.AgeCategory `json:"age_categories"`
}

type filtersBody struct {
	Years         []int               `json:"years"`
	Districts     []string            `json:"districts"`
	Causes        []string            `json:"causes"`
	Weekdays      []model.Weekday     `json:"weekdays"`
	AgeCategories []model.AgeCategory `json:"age_categories"`
	Hours         hourRange           `json:"hours"`
	Defaults      defaultsBody        `json:"defaults"`
}

// HandleFilters serves every selectable value plus the defaults applied to
// absent /query parameters.
func HandleFilters(src OptionSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		d := filter.Defaults(src)
		body := filtersBody{
			Years:         src.Years(),
			Districts:     src.DistinctDistricts(),
			Causes:        src.DistinctCauses(),
			Weekdays:      src.DistinctWeekdays(),
			AgeCategories: src.DistinctAgeCategories(),
			Hours:         hourRange{Low: 0, High: 23},
			Defaults: defaultsBody{
				Year:          d.TargetYear,
				Districts:     d.Districts,
				Weekdays:      d.Weekdays,
				Hours:         hourRange{Low: d.HourLow, High: d.HourHigh},
				AgeCategories: d.AgeCategories,
			},
		}
		if hb, ok := src.HourBounds(); ok {
			body.Hours = hourRange{Low: hb.Min, High: hb.Max}
		}
		code := http.StatusOK
		if err := WriteJSON(w, code, body); err != nil {
			code = http.StatusInternalServerError
		}
		observability.ObserveHTTP(r.Method, "/filters", code, time.Since(start).Seconds())
	}
}
