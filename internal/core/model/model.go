// Package model defines core domain types shared across the service.
package model

import (
	"math"
	"strconv"
)

// Record is one recorded incident. Latitude and Longitude are nil when the
// source row had no usable coordinate.
type Record struct {
	Latitude    *float64          `json:"latitude"`
	Longitude   *float64          `json:"longitude"`
	Year        int               `json:"year"`
	Month       Month             `json:"month"`
	DayOfWeek   Weekday           `json:"dayofweek"`
	Hour        int               `json:"hour"`
	Age         int               `json:"age"`
	AgeCategory AgeCategory       `json:"age_category"`
	District    string            `json:"district"`
	Cause       string            `json:"cause"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// HasCoordinates reports whether the record can be placed on a map.
func (r Record) HasCoordinates() bool {
	if r.Latitude == nil || r.Longitude == nil {
		return false
	}
	lat, lon := *r.Latitude, *r.Longitude
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Point is one entry of the point-set projection.
type Point struct {
	Record
	Located bool   `json:"has_coordinates"`
	Cell    string `json:"h3_cell,omitempty"`
}

// CauseCount is one row of the cause-frequency table.
type CauseCount struct {
	YearLabel string `json:"year_label"`
	Year      int    `json:"year"`
	Cause     string `json:"cause"`
	Count     int    `json:"count"`
}

// MonthCount is one row of the monthly series.
type MonthCount struct {
	Year  int   `json:"year"`
	Month Month `json:"month"`
	Count int   `json:"count"`
}

// CellCount is the number of points that fell into one H3 cell.
type CellCount struct {
	Cell  string `json:"cell"`
	Count int    `json:"count"`
}

type QueryResult struct {
	Points       []Point      `json:"points"`
	CauseTable   []CauseCount `json:"cause_table"`
	MonthlyTable []MonthCount `json:"monthly_table"`
	Cells        []CellCount  `json:"cells,omitempty"`
}

// Bounds is an inclusive integer range.
type Bounds struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func YearLabel(year int) string { return strconv.Itoa(year) }
