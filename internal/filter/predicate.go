// Package filter implements the inclusion test shared by every projection.
package filter

import (
	"math"

	"github.com/mohammed-shakir/incident-explorer/internal/core/model"
)

// YearPolicy selects how the target year constrains a record.
type YearPolicy int

const (
	// ExactYear keeps records of the target year only (point set).
	ExactYear YearPolicy = iota
	// TrailingWindow keeps the target year and the year before it
	// (cause and monthly tables).
	TrailingWindow
)

// Params is the caller-supplied filter. Set-valued dimensions are
// OR-combined inside and AND-combined across; an empty set matches nothing.
type Params struct {
	TargetYear    int
	Districts     []string
	Weekdays      []model.Weekday
	HourLow       int
	HourHigh      int
	AgeCategories []model.AgeCategory
}

// Predicate is a compiled Params. It is immutable and safe for concurrent use.
type Predicate struct {
	policy    YearPolicy
	yearLow   int
	yearHigh  int
	hourLow   int
	hourHigh  int
	districts map[string]struct{}
	weekdays  [int(model.Sunday) + 1]bool
	ages      [int(model.Seniors) + 1]bool
}

// Compile builds the inclusion test for one year policy.
func Compile(p Params, policy YearPolicy) *Predicate {
	pr := &Predicate{
		policy:    policy,
		yearLow:   p.TargetYear,
		yearHigh:  p.TargetYear,
		hourLow:   p.HourLow,
		hourHigh:  p.HourHigh,
		districts: make(map[string]struct{}, len(p.Districts)),
	}
	// the window is clamped at the smallest int instead of wrapping
	if policy == TrailingWindow && p.TargetYear > math.MinInt {
		pr.yearLow = p.TargetYear - 1
	}
	for _, d := range p.Districts {
		pr.districts[d] = struct{}{}
	}
	for _, d := range p.Weekdays {
		if d.Valid() {
			pr.weekdays[d] = true
		}
	}
	for _, c := range p.AgeCategories {
		if c.Valid() {
			pr.ages[c] = true
		}
	}
	return pr
}

// Matches reports whether r passes every condition. An inverted hour range
// (low > high) never matches.
func (pr *Predicate) Matches(r model.Record) bool {
	if r.Year < pr.yearLow || r.Year > pr.yearHigh {
		return false
	}
	if r.Hour < pr.hourLow || r.Hour > pr.hourHigh {
		return false
	}
	if !r.DayOfWeek.Valid() || !pr.weekdays[r.DayOfWeek] {
		return false
	}
	if !r.AgeCategory.Valid() || !pr.ages[r.AgeCategory] {
		return false
	}
	_, ok := pr.districts[r.District]
	return ok
}

// Matches is the one-shot form of Compile(p, policy).Matches(r).
func (p Params) Matches(r model.Record, policy YearPolicy) bool {
	return Compile(p, policy).Matches(r)
}

// Source is the read side of the dataset store needed to filter.
type Source interface {
	Each(fn func(model.Record) bool)
}

// Select returns a new slice with the records of src that match p under
// policy, in load order. It never returns nil.
func Select(src Source, p Params, policy YearPolicy) []model.Record {
	pr := Compile(p, policy)
	out := make([]model.Record, 0)
	src.Each(func(r model.Record) bool {
		if pr.Matches(r) {
			out = append(out, r)
		}
		return true
	})
	return out
}
