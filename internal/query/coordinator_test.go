package query

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohammed-shakir/incident-explorer/internal/core/model"
	"github.com/mohammed-shakir/incident-explorer/internal/dataset"
	"github.com/mohammed-shakir/incident-explorer/internal/filter"
	h3mapper "github.com/mohammed-shakir/incident-explorer/internal/mapper/h3"
)

func ptr(f float64) *float64 { return &f }

func newStore(t *testing.T, recs ...model.Record) *dataset.Store {
	t.Helper()
	s, err := dataset.New(recs)
	require.NoError(t, err)
	return s
}

func everything(s *dataset.Store, year int) filter.Params {
	return filter.Params{
		TargetYear:    year,
		Districts:     s.DistinctDistricts(),
		Weekdays:      model.Weekdays(),
		HourLow:       0,
		HourHigh:      23,
		AgeCategories: model.AgeCategories(),
	}
}

func TestRunQuery_TwoRecordExample(t *testing.T) {
	s := newStore(t,
		model.Record{Year: 2020, Month: model.January, Cause: "A", District: "X", DayOfWeek: model.Monday, Hour: 10, Age: 5},
		model.Record{Year: 2021, Month: model.January, Cause: "A", District: "X", DayOfWeek: model.Monday, Hour: 10, Age: 30},
	)
	res, err := New(s).RunQuery(everything(s, 2021))
	require.NoError(t, err)

	assert.Equal(t, []model.CauseCount{
		{YearLabel: "2020", Year: 2020, Cause: "A", Count: 1},
		{YearLabel: "2021", Year: 2021, Cause: "A", Count: 1},
	}, res.CauseTable)

	require.Len(t, res.Points, 1)
	assert.Equal(t, 2021, res.Points[0].Year)
	assert.Equal(t, model.Adults, res.Points[0].AgeCategory)

	assert.Equal(t, []model.MonthCount{
		{Year: 2020, Month: model.January, Count: 1},
		{Year: 2021, Month: model.January, Count: 1},
	}, res.MonthlyTable)
	assert.Nil(t, res.Cells, "no cell locator configured")
}

func TestRunQuery_YearWindows(t *testing.T) {
	var recs []model.Record
	for y := 2017; y <= 2022; y++ {
		recs = append(recs, model.Record{Year: y, Month: model.July, Cause: "A", District: "X", DayOfWeek: model.Friday, Hour: 1, Age: 40})
	}
	s := newStore(t, recs...)
	res, err := New(s).RunQuery(everything(s, 2020))
	require.NoError(t, err)

	for _, p := range res.Points {
		assert.Equal(t, 2020, p.Year)
	}
	for _, row := range res.CauseTable {
		assert.True(t, row.Year == 2019 || row.Year == 2020, "year %d", row.Year)
	}
	for _, row := range res.MonthlyTable {
		assert.True(t, row.Year == 2019 || row.Year == 2020, "year %d", row.Year)
	}
}

func TestRunQuery_InvertedHoursAreEmptyEverywhere(t *testing.T) {
	s := newStore(t, model.Record{Year: 2021, Month: model.May, Cause: "A", District: "X", DayOfWeek: model.Monday, Hour: 3, Age: 30})
	p := everything(s, 2021)
	p.HourLow, p.HourHigh = 5, 2

	res, err := New(s).RunQuery(p)
	require.NoError(t, err)
	assert.NotNil(t, res.Points)
	assert.Empty(t, res.Points)
	assert.NotNil(t, res.CauseTable)
	assert.Empty(t, res.CauseTable)
	assert.NotNil(t, res.MonthlyTable)
	assert.Empty(t, res.MonthlyTable)
}

func TestRunQuery_IdentityFilterReturnsEveryRecordOfYear(t *testing.T) {
	var recs []model.Record
	districts := []string{"Western", "Eastern", "Central"}
	for i := 0; i < 60; i++ {
		recs = append(recs, model.Record{
			Year:      2020 + i%2,
			Month:     model.Month(i%12 + 1),
			DayOfWeek: model.Weekday(i%7 + 1),
			Hour:      i % 24,
			Age:       i * 2,
			District:  districts[i%3],
			Cause:     "Shooting",
		})
	}
	s := newStore(t, recs...)
	res, err := New(s).RunQuery(everything(s, 2021))
	require.NoError(t, err)
	assert.Len(t, res.Points, 30)
}

func TestRunQuery_InvalidParameterRejectedBeforeProjections(t *testing.T) {
	s := newStore(t, model.Record{Year: 2021, Month: model.May, Cause: "A", District: "X", DayOfWeek: model.Monday, Hour: 3, Age: 30})
	p := everything(s, 2021)
	p.Districts = []string{"Y"}
	_, err := New(s).RunQuery(p)
	require.ErrorIs(t, err, model.ErrInvalidParameter)

	p = everything(s, 2021)
	p.HourHigh = 30
	_, err = New(s).RunQuery(p)
	require.ErrorIs(t, err, model.ErrInvalidParameter)
}

func TestRunQuery_WithCells(t *testing.T) {
	s := newStore(t,
		model.Record{Latitude: ptr(39.29), Longitude: ptr(-76.61), Year: 2021, Month: model.May, Cause: "A", District: "X", DayOfWeek: model.Monday, Hour: 3, Age: 30},
		model.Record{Latitude: ptr(39.29), Longitude: ptr(-76.61), Year: 2021, Month: model.May, Cause: "B", District: "X", DayOfWeek: model.Monday, Hour: 3, Age: 30},
		model.Record{Year: 2021, Month: model.May, Cause: "C", District: "X", DayOfWeek: model.Monday, Hour: 3, Age: 30},
	)
	m, err := h3mapper.New(8)
	require.NoError(t, err)

	res, err := New(s, WithCells(m)).RunQuery(everything(s, 2021))
	require.NoError(t, err)
	require.Len(t, res.Points, 3)
	require.Len(t, res.Cells, 1)
	assert.Equal(t, 2, res.Cells[0].Count)
	assert.False(t, res.Points[2].Located)
}

func TestRunQuery_StatelessAcrossCalls(t *testing.T) {
	s := newStore(t,
		model.Record{Year: 2020, Month: model.March, Cause: "A", District: "X", DayOfWeek: model.Monday, Hour: 10, Age: 5},
		model.Record{Year: 2021, Month: model.April, Cause: "B", District: "Y", DayOfWeek: model.Tuesday, Hour: 11, Age: 30},
	)
	c := New(s)
	first, err := c.RunQuery(everything(s, 2021))
	require.NoError(t, err)

	narrow := everything(s, 2021)
	narrow.Districts = []string{"X"}
	_, err = c.RunQuery(narrow)
	require.NoError(t, err)

	again, err := c.RunQuery(everything(s, 2021))
	require.NoError(t, err)
	assert.Equal(t, first, again)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := c.RunQuery(everything(s, 2021))
			assert.NoError(t, err)
			assert.Equal(t, first, r)
		}()
	}
	wg.Wait()
}
