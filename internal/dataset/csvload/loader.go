// Package csvload reads the raw incident CSV into records for the dataset
// store. Column order is taken from the header row.
package csvload

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/mohammed-shakir/incident-explorer/internal/core/model"
)

var required = []string{
	"latitude", "longitude", "year", "month", "dayofweek", "hour", "age", "district", "cause",
}

// LoadFile opens path and calls Load.
func LoadFile(path string) ([]model.Record, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// Load parses every data row. Missing or unparsable coordinates load as nil;
// any other malformed required field fails the whole load with a
// model.SchemaError.
func Load(r io.Reader) ([]model.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &model.SchemaError{Row: 0, Field: "header", Reason: "empty input"}
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		// pandas exports often carry an unnamed index column
		if h == "" {
			continue
		}
		idx[h] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, &model.SchemaError{Row: 0, Field: col, Reason: "missing column"}
		}
	}

	var out []model.Record
	for row := 1; ; row++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}
		rec, err := parseRow(row, fields, header, idx)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseRow(row int, fields, header []string, idx map[string]int) (model.Record, error) {
	get := func(col string) string {
		i := idx[col]
		if i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	var rec model.Record
	var err error

	rec.Latitude = parseCoord(get("latitude"))
	rec.Longitude = parseCoord(get("longitude"))

	if rec.Year, err = parseInt(get("year")); err != nil {
		return rec, &model.SchemaError{Row: row, Field: "year", Reason: err.Error()}
	}
	if rec.Hour, err = parseInt(get("hour")); err != nil {
		return rec, &model.SchemaError{Row: row, Field: "hour", Reason: err.Error()}
	}
	if rec.Age, err = parseInt(get("age")); err != nil {
		return rec, &model.SchemaError{Row: row, Field: "age", Reason: err.Error()}
	}
	if rec.Month, err = model.ParseMonth(get("month")); err != nil {
		return rec, &model.SchemaError{Row: row, Field: "month", Reason: err.Error()}
	}
	if rec.DayOfWeek, err = model.ParseWeekday(get("dayofweek")); err != nil {
		return rec, &model.SchemaError{Row: row, Field: "dayofweek", Reason: err.Error()}
	}
	rec.District = get("district")
	rec.Cause = get("cause")

	for i, h := range header {
		key := strings.TrimSpace(h)
		if key == "" || i >= len(fields) {
			continue
		}
		if isRequired(strings.ToLower(key)) {
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]string)
		}
		rec.Extra[key] = strings.TrimSpace(fields[i])
	}
	return rec, nil
}

func isRequired(col string) bool {
	for _, c := range required {
		if c == col {
			return true
		}
	}
	return false
}

// parseInt also accepts integral floats ("2021.0") as written by pandas.
func parseInt(s string) (int, error) {
	if s == "" {
		return 0, errors.New("missing")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int(f), nil
}

func parseCoord(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
