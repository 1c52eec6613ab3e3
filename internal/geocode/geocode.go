// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package geocode resolves free-text place names to geographic coordinates.
package geocode

import (
	"context"
	"errors"
)

var (
	// ErrEmptyQuery is returned when a lookup is requested for an empty place name.
	ErrEmptyQuery = errors.New("geocoding query must not be empty")
	// ErrNoResults is returned when the geocoding service knows no place for the query.
	ErrNoResults = errors.New("no coordinates found for query")
	// ErrUnexpectedStatus is returned when a geocoding API answers with a non-200 status.
	ErrUnexpectedStatus = errors.New("geocoding API returned non-positive response code")
	// ErrInvalidCoordinate is returned when a geocoding API answers with coordinates out of range.
	ErrInvalidCoordinate = errors.New("geocoding API returned invalid coordinates")
	// ErrMalformedResponse is returned when a result carries no location.
	ErrMalformedResponse = errors.New("geocoding API returned a result without location")
)

// Coordinate represents a geographic coordinate.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`

	CacheHit bool `json:"-"`
	Found    bool `json:"found"`
}

// Valid checks if the coordinate is valid according to the EPSG logic
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Geocoder is implemented by each geocoding API backend.
type Geocoder interface {
	Name() string
	Search(ctx context.Context, query string) (Coordinate, error)
}
