package filter

import (
	"strconv"

	"github.com/mohammed-shakir/incident-explorer/internal/core/model"
)

// Catalog exposes the selector values of a loaded dataset.
type Catalog interface {
	HasDistrict(name string) bool
	DistinctDistricts() []string
	DistinctWeekdays() []model.Weekday
	DistinctAgeCategories() []model.AgeCategory
	YearBounds() (model.Bounds, bool)
	HourBounds() (model.Bounds, bool)
}

// Validate rejects malformed input before any projection runs. An inverted
// hour range and empty sets are valid: they simply match nothing.
func Validate(p Params, c Catalog) error {
	if p.HourLow < 0 || p.HourLow > 23 {
		return &model.ParamError{Field: "hour_low", Value: strconv.Itoa(p.HourLow), Reason: "outside [0,23]"}
	}
	if p.HourHigh < 0 || p.HourHigh > 23 {
		return &model.ParamError{Field: "hour_high", Value: strconv.Itoa(p.HourHigh), Reason: "outside [0,23]"}
	}
	for _, d := range p.Districts {
		if !c.HasDistrict(d) {
			return &model.ParamError{Field: "district", Value: d, Reason: "unknown district"}
		}
	}
	for _, d := range p.Weekdays {
		if !d.Valid() {
			return &model.ParamError{Field: "weekday", Value: strconv.Itoa(int(d)), Reason: "unknown weekday"}
		}
	}
	for _, a := range p.AgeCategories {
		if !a.Valid() {
			return &model.ParamError{Field: "age", Value: strconv.Itoa(int(a)), Reason: "unknown age category"}
		}
	}
	return nil
}

// Defaults mirrors the initial state of the control surface: latest year,
// every district, weekday and age category, and the full hour range seen in
// the data. An empty catalog yields hours [0,23] and year 0.
func Defaults(c Catalog) Params {
	p := Params{
		Districts:     c.DistinctDistricts(),
		Weekdays:      c.DistinctWeekdays(),
		AgeCategories: c.DistinctAgeCategories(),
		HourLow:       0,
		HourHigh:      23,
	}
	if yb, ok := c.YearBounds(); ok {
		p.TargetYear = yb.Max
	}
	if hb, ok := c.HourBounds(); ok {
		p.HourLow, p.HourHigh = hb.Min, hb.Max
	}
	return p
}
