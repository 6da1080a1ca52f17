package router

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mohammed-shakir/incident-explorer/internal/core/model"
	"github.com/mohammed-shakir/incident-explorer/internal/filter"
)

// ParseQueryParams reads year, district, weekday, hour_low, hour_high and age
// from the URL. An absent parameter takes its default from cat; a parameter
// that is present but empty selects nothing. List parameters may repeat or
// carry comma-separated values.
func ParseQueryParams(r *http.Request, cat filter.Catalog) (filter.Params, error) {
	q := r.URL.Query()
	p := filter.Defaults(cat)

	var err error
	if v, ok := single(q, "year"); ok {
		if p.TargetYear, err = parseInt("year", v); err != nil {
			return filter.Params{}, err
		}
	}
	if v, ok := single(q, "hour_low"); ok {
		if p.HourLow, err = parseInt("hour_low", v); err != nil {
			return filter.Params{}, err
		}
	}
	if v, ok := single(q, "hour_high"); ok {
		if p.HourHigh, err = parseInt("hour_high", v); err != nil {
			return filter.Params{}, err
		}
	}

	if vs, ok := list(q, "district"); ok {
		p.Districts = vs
	}
	if vs, ok := list(q, "weekday"); ok {
		p.Weekdays = make([]model.Weekday, 0, len(vs))
		for _, v := range vs {
			d, err := parseWeekday(v)
			if err != nil {
				return filter.Params{}, err
			}
			p.Weekdays = append(p.Weekdays, d)
		}
	}
	if vs, ok := list(q, "age"); ok {
		p.AgeCategories = make([]model.AgeCategory, 0, len(vs))
		for _, v := range vs {
			a, err := model.ParseAgeCategory(v)
			if err != nil {
				return filter.Params{}, &model.ParamError{Field: "age", Value: v, Reason: "unknown age category"}
			}
			p.AgeCategories = append(p.AgeCategories, a)
		}
	}
	return p, nil
}

func single(q url.Values, key string) (string, bool) {
	if _, ok := q[key]; !ok {
		return "", false
	}
	return strings.TrimSpace(q.Get(key)), true
}

func list(q url.Values, key string) ([]string, bool) {
	raw, ok := q[key]
	if !ok {
		return nil, false
	}
	out := []string{}
	for _, v := range raw {
		for part := range strings.SplitSeq(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out, true
}

func parseInt(field, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &model.ParamError{Field: field, Value: v, Reason: "not an integer"}
	}
	return n, nil
}

// weekdays are accepted by name or by Monday-first ordinal
func parseWeekday(v string) (model.Weekday, error) {
	if n, err := strconv.Atoi(v); err == nil {
		if d := model.Weekday(n); d.Valid() {
			return d, nil
		}
	} else if d, err := model.ParseWeekday(v); err == nil {
		return d, nil
	}
	return 0, &model.ParamError{Field: "weekday", Value: v, Reason: "unknown weekday"}
}
