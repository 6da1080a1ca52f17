package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/mohammed-shakir/incident-explorer/internal/core/model"
	"github.com/mohammed-shakir/incident-explorer/internal/dataset"
	"github.com/mohammed-shakir/incident-explorer/internal/filter"
)

type captureHandler struct {
	called bool
	got    filter.Params
	err    error
}

func (c *captureHandler) HandleQuery(_ context.Context, w http.ResponseWriter, _ *http.Request, p filter.Params) {
	c.called = true
	c.got = p
	if c.err != nil {
		WriteError(w, c.err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]string{"ok": "1"})
}

func testStore(t *testing.T) *dataset.Store {
	t.Helper()
	recs := []model.Record{
		{Year: 2019, Month: model.March, DayOfWeek: model.Friday, Hour: 4, Age: 30, District: "Northern", Cause: "Shooting"},
		{Year: 2020, Month: model.May, DayOfWeek: model.Monday, Hour: 21, Age: 10, District: "Southern", Cause: "Stabbing"},
		{Year: 2020, Month: model.May, DayOfWeek: model.Sunday, Hour: 7, Age: 70, District: "Northern", Cause: "Shooting"},
	}
	s, err := dataset.New(recs)
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	return s
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestParseQueryParams_DefaultsWhenAbsent(t *testing.T) {
	s := testStore(t)
	r := httptest.NewRequest(http.MethodGet, "/query", nil)

	p, err := ParseQueryParams(r, s)
	if err != nil {
		t.Fatalf("ParseQueryParams: %v", err)
	}
	if !reflect.DeepEqual(p, filter.Defaults(s)) {
		t.Fatalf("params=%+v want defaults %+v", p, filter.Defaults(s))
	}
	if p.TargetYear != 2020 || p.HourLow != 4 || p.HourHigh != 21 {
		t.Fatalf("unexpected defaults: %+v", p)
	}
}

func TestParseQueryParams_ExplicitValues(t *testing.T) {
	s := testStore(t)
	r := httptest.NewRequest(http.MethodGet,
		"/query?year=2019&district=Northern,Southern&weekday=friday&weekday=7&hour_low=3&hour_high=9&age=adults", nil)

	p, err := ParseQueryParams(r, s)
	if err != nil {
		t.Fatalf("ParseQueryParams: %v", err)
	}
	want := filter.Params{
		TargetYear:    2019,
		Districts:     []string{"Northern", "Southern"},
		Weekdays:      []model.Weekday{model.Friday, model.Sunday},
		HourLow:       3,
		HourHigh:      9,
		AgeCategories: []model.AgeCategory{model.Adults},
	}
	if !reflect.DeepEqual(p, want) {
		t.Fatalf("params=%+v want %+v", p, want)
	}
}

func TestParseQueryParams_PresentButEmptySelectsNothing(t *testing.T) {
	s := testStore(t)
	r := httptest.NewRequest(http.MethodGet, "/query?district=", nil)

	p, err := ParseQueryParams(r, s)
	if err != nil {
		t.Fatalf("ParseQueryParams: %v", err)
	}
	if p.Districts == nil || len(p.Districts) != 0 {
		t.Fatalf("districts=%#v want empty non-nil", p.Districts)
	}
}

func TestParseQueryParams_BadValues(t *testing.T) {
	s := testStore(t)
	for _, q := range []string{"year=abc", "hour_low=x", "weekday=funday", "weekday=8", "age=toddlers"} {
		r := httptest.NewRequest(http.MethodGet, "/query?"+q, nil)
		_, err := ParseQueryParams(r, s)
		if !errors.Is(err, model.ErrInvalidParameter) {
			t.Fatalf("%s: err=%v want ErrInvalidParameter", q, err)
		}
	}
}

func TestHandleQuery_InvalidParamIs400WithJSON(t *testing.T) {
	s := testStore(t)
	h := &captureHandler{}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/query?district=Atlantis", nil)

	HandleQuery(discard(), s, h)(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want 400", rr.Code)
	}
	if h.called {
		t.Fatalf("handler must not run for invalid params")
	}
	var body errorBody
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Field != "district" || body.Value != "Atlantis" {
		t.Fatalf("body=%+v", body)
	}
}

func TestHandleQuery_HourOutOfRangeIs400(t *testing.T) {
	s := testStore(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/query?hour_high=24", nil)

	HandleQuery(discard(), s, &captureHandler{})(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want 400", rr.Code)
	}
}

func TestHandleQuery_InvertedHoursReachHandler(t *testing.T) {
	s := testStore(t)
	h := &captureHandler{}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/query?hour_low=20&hour_high=2", nil)

	HandleQuery(discard(), s, h)(rr, req)

	if rr.Code != http.StatusOK || !h.called {
		t.Fatalf("status=%d called=%v", rr.Code, h.called)
	}
}

func TestHandleQuery_HandlerErrorIs500(t *testing.T) {
	s := testStore(t)
	h := &captureHandler{err: errors.New("boom")}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/query", nil)

	HandleQuery(discard(), s, h)(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d want 500", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content-type=%q", ct)
	}
}

func TestHandleFilters(t *testing.T) {
	s := testStore(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/filters", nil)

	HandleFilters(s)(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	var body struct {
		Years     []int    `json:"years"`
		Districts []string `json:"districts"`
		Causes    []string `json:"causes"`
		Weekdays  []string `json:"weekdays"`
		Ages      []string `json:"age_categories"`
		Hours     struct {
			Low  int `json:"low"`
			High int `json:"high"`
		} `json:"hours"`
		Defaults struct {
			Year int `json:"year"`
		} `json:"defaults"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(body.Years, []int{2019, 2020}) {
		t.Fatalf("years=%v", body.Years)
	}
	if !reflect.DeepEqual(body.Districts, []string{"Northern", "Southern"}) {
		t.Fatalf("districts=%v", body.Districts)
	}
	if !reflect.DeepEqual(body.Weekdays, []string{"Monday", "Friday", "Sunday"}) {
		t.Fatalf("weekdays=%v", body.Weekdays)
	}
	if !reflect.DeepEqual(body.Ages, []string{"Children", "Adults", "Seniors"}) {
		t.Fatalf("ages=%v", body.Ages)
	}
	if body.Hours.Low != 4 || body.Hours.High != 21 || body.Defaults.Year != 2020 {
		t.Fatalf("hours=%+v defaults=%+v", body.Hours, body.Defaults)
	}
}

func TestWriteJSON_UnencodableValueIs500(t *testing.T) {
	rr := httptest.NewRecorder()
	err := WriteJSON(rr, http.StatusOK, map[string]float64{"lat": math.NaN()})
	if err == nil {
		t.Fatalf("expected encode error")
	}
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d want 500", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "internal error") {
		t.Fatalf("body=%q", rr.Body.String())
	}
}
