// Package h3mapper places incident coordinates on the H3 hexagonal grid so the
// map view can bin points by cell.
package h3mapper

import (
	"fmt"

	h3 "github.com/uber/h3-go/v4"
)

type Mapper struct {
	res int
}

func New(res int) (*Mapper, error) {
	if err := validateRes(res); err != nil {
		return nil, err
	}
	return &Mapper{res: res}, nil
}

func (m *Mapper) Resolution() int { return m.res }

// CellFor returns the H3 cell containing (lat, lng) in degrees.
func (m *Mapper) CellFor(lat, lng float64) (string, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return "", fmt.Errorf("coordinate out of range: %f,%f", lat, lng)
	}
	c, err := h3.LatLngToCell(h3.NewLatLng(lat, lng), m.res)
	if err != nil {
		return "", fmt.Errorf("h3 latlng to cell: %w", err)
	}
	return c.String(), nil
}

func validateRes(res int) error {
	if res < 0 || res > 15 {
		return fmt.Errorf("invalid H3 resolution %d (must be 0..15)", res)
	}
	return nil
}
