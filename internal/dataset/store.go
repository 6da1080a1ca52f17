// Package dataset holds the immutable incident collection and the read-only
// enumeration queries the control surface uses to populate its selectors.
package dataset

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mohammed-shakir/incident-explorer/internal/core/model"
)

// Store is built once per process and never mutated afterwards, so it can be
// shared by reference between concurrent queries.
type Store struct {
	records []model.Record

	districts  []string
	districtIx map[string]struct{}
	causes     []string
	years      []int
	hours      model.Bounds
	ages       []model.AgeCategory
	weekdays   []model.Weekday
}

// New validates every record, derives its age category and snapshots the
// input. The caller's slice is copied; later changes to it are not seen.
func New(records []model.Record) (*Store, error) {
	s := &Store{
		records:    make([]model.Record, len(records)),
		districtIx: make(map[string]struct{}),
	}

	causeSeen := make(map[string]struct{})
	yearSeen := make(map[int]struct{})
	var ageSeen [int(model.Seniors) + 1]bool
	var daySeen [int(model.Sunday) + 1]bool

	for i, r := range records {
		if err := validate(i+1, r); err != nil {
			return nil, err
		}
		r.District = strings.TrimSpace(r.District)
		r.Cause = strings.TrimSpace(r.Cause)
		r.AgeCategory = model.BucketAge(r.Age)
		r.Latitude = finiteCopy(r.Latitude)
		r.Longitude = finiteCopy(r.Longitude)
		r.Extra = cloneExtra(r.Extra)
		s.records[i] = r

		if _, ok := s.districtIx[r.District]; !ok {
			s.districtIx[r.District] = struct{}{}
			s.districts = append(s.districts, r.District)
		}
		if _, ok := causeSeen[r.Cause]; !ok {
			causeSeen[r.Cause] = struct{}{}
			s.causes = append(s.causes, r.Cause)
		}
		if _, ok := yearSeen[r.Year]; !ok {
			yearSeen[r.Year] = struct{}{}
			s.years = append(s.years, r.Year)
		}
		ageSeen[r.AgeCategory] = true
		daySeen[r.DayOfWeek] = true

		if i == 0 || r.Hour < s.hours.Min {
			s.hours.Min = r.Hour
		}
		if i == 0 || r.Hour > s.hours.Max {
			s.hours.Max = r.Hour
		}
	}

	sort.Ints(s.years)
	for _, c := range model.AgeCategories() {
		if ageSeen[c] {
			s.ages = append(s.ages, c)
		}
	}
	for _, d := range model.Weekdays() {
		if daySeen[d] {
			s.weekdays = append(s.weekdays, d)
		}
	}
	return s, nil
}

func validate(row int, r model.Record) error {
	switch {
	case strings.TrimSpace(r.District) == "":
		return &model.SchemaError{Row: row, Field: "district", Reason: "missing"}
	case strings.TrimSpace(r.Cause) == "":
		return &model.SchemaError{Row: row, Field: "cause", Reason: "missing"}
	case !r.Month.Valid():
		return &model.SchemaError{Row: row, Field: "month", Reason: fmt.Sprintf("invalid month %d", int(r.Month))}
	case !r.DayOfWeek.Valid():
		return &model.SchemaError{Row: row, Field: "dayofweek", Reason: fmt.Sprintf("invalid weekday %d", int(r.DayOfWeek))}
	case r.Hour < 0 || r.Hour > 23:
		return &model.SchemaError{Row: row, Field: "hour", Reason: fmt.Sprintf("%d outside [0,23]", r.Hour)}
	case r.Age < 0:
		return &model.SchemaError{Row: row, Field: "age", Reason: fmt.Sprintf("negative age %d", r.Age)}
	}
	return nil
}

// finiteCopy copies a coordinate; NaN and Inf become nil.
func finiteCopy(f *float64) *float64 {
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
		return nil
	}
	v := *f
	return &v
}

// detach copies the coordinate pointers of a record handed to callers.
func detach(r model.Record) model.Record {
	if r.Latitude != nil {
		v := *r.Latitude
		r.Latitude = &v
	}
	if r.Longitude != nil {
		v := *r.Longitude
		r.Longitude = &v
	}
	return r
}

func cloneExtra(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *Store) Len() int { return len(s.records) }

// At returns a copy of the i-th record. Extra is shared and must be treated
// as read-only.
func (s *Store) At(i int) model.Record { return detach(s.records[i]) }

// Each calls fn for every record in load order until fn returns false.
func (s *Store) Each(fn func(model.Record) bool) {
	for _, r := range s.records {
		if !fn(detach(r)) {
			return
		}
	}
}

// DistinctDistricts returns districts in first-appearance order.
func (s *Store) DistinctDistricts() []string { return append([]string(nil), s.districts...) }

func (s *Store) HasDistrict(name string) bool {
	_, ok := s.districtIx[name]
	return ok
}

// DistinctCauses returns causes in first-appearance order.
func (s *Store) DistinctCauses() []string { return append([]string(nil), s.causes...) }

// Years returns every year present, ascending.
func (s *Store) Years() []int { return append([]int(nil), s.years...) }

// YearBounds reports false for an empty store.
func (s *Store) YearBounds() (model.Bounds, bool) {
	if len(s.years) == 0 {
		return model.Bounds{}, false
	}
	return model.Bounds{Min: s.years[0], Max: s.years[len(s.years)-1]}, true
}

func (s *Store) HourBounds() (model.Bounds, bool) {
	if len(s.records) == 0 {
		return model.Bounds{}, false
	}
	return s.hours, true
}

// DistinctAgeCategories returns the categories present, youngest first.
func (s *Store) DistinctAgeCategories() []model.AgeCategory {
	return append([]model.AgeCategory(nil), s.ages...)
}

// DistinctWeekdays returns the weekdays present, Monday first.
func (s *Store) DistinctWeekdays() []model.Weekday {
	return append([]model.Weekday(nil), s.weekdays...)
}
