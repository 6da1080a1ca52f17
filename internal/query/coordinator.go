// Package query runs one filter-parameter set against the dataset store and
// returns the three projections.
package query

import (
	"github.com/mohammed-shakir/incident-explorer/internal/core/model"
	"github.com/mohammed-shakir/incident-explorer/internal/dataset"
	"github.com/mohammed-shakir/incident-explorer/internal/filter"
	"github.com/mohammed-shakir/incident-explorer/internal/projection"
)

// Coordinator holds no per-query state; RunQuery may be called concurrently.
type Coordinator struct {
	store *dataset.Store
	cells projection.CellLocator
}

type Option func(*Coordinator)

// WithCells annotates points with spatial cells and fills QueryResult.Cells.
func WithCells(c projection.CellLocator) Option {
	return func(co *Coordinator) { co.cells = c }
}

func New(store *dataset.Store, opts ...Option) *Coordinator {
	c := &Coordinator{store: store}
	for _, o := range opts {
		o(c)
	}
	return c
}

// RunQuery validates p and then lets each projection filter the store on its
// own: the point set uses the exact target year, both tables the trailing
// two-year window. Empty matches produce empty, non-nil slices.
func (c *Coordinator) RunQuery(p filter.Params) (model.QueryResult, error) {
	if err := filter.Validate(p, c.store); err != nil {
		return model.QueryResult{}, err
	}

	res := model.QueryResult{
		Points:       c.points(p),
		CauseTable:   c.causeTable(p),
		MonthlyTable: c.monthlyTable(p),
	}
	if c.cells != nil {
		res.Cells = projection.CellCounts(res.Points)
	}
	return res, nil
}

func (c *Coordinator) points(p filter.Params) []model.Point {
	recs := filter.Select(c.store, p, filter.ExactYear)
	return projection.Points(recs, projection.PointOptions{Cells: c.cells})
}

func (c *Coordinator) causeTable(p filter.Params) []model.CauseCount {
	return projection.CauseFrequency(filter.Select(c.store, p, filter.TrailingWindow))
}

func (c *Coordinator) monthlyTable(p filter.Params) []model.MonthCount {
	return projection.MonthlySeries(filter.Select(c.store, p, filter.TrailingWindow))
}
