package projection

import (
	"sort"

	"github.com/mohammed-shakir/incident-explorer/internal/core/model"
)

// CellLocator resolves a coordinate to a spatial cell id.
type CellLocator interface {
	CellFor(lat, lng float64) (string, error)
}

type PointOptions struct {
	// Cells is optional; when nil points carry no cell id.
	Cells CellLocator
}

// Points emits one point per record, duplicates included. Records without
// usable coordinates are passed through with Located=false and no cell.
func Points(records []model.Record, opts PointOptions) []model.Point {
	out := make([]model.Point, 0, len(records))
	for _, r := range records {
		p := model.Point{Record: r, Located: r.HasCoordinates()}
		if p.Located && opts.Cells != nil {
			if c, err := opts.Cells.CellFor(*r.Latitude, *r.Longitude); err == nil {
				p.Cell = c
			}
		}
		out = append(out, p)
	}
	return out
}

// CellCounts bins located points by cell, busiest cell first.
func CellCounts(points []model.Point) []model.CellCount {
	counts := make(map[string]int)
	for _, p := range points {
		if p.Cell == "" {
			continue
		}
		counts[p.Cell]++
	}
	out := make([]model.CellCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, model.CellCount{Cell: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Cell < out[j].Cell
	})
	return out
}
