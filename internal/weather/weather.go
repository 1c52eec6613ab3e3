// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package weather fetches current weather conditions for a coordinate.
package weather

import (
	"context"
	"errors"

	"github.com/wneessen/tenki/internal/geocode"
)

var (
	// ErrUnexpectedStatus is returned when a weather API answers with a non-200 status.
	ErrUnexpectedStatus = errors.New("weather API returned non-positive response code")
	// ErrInvalidCoordinate is returned for coordinates outside of the valid range.
	ErrInvalidCoordinate = errors.New("invalid coordinates for weather lookup")
	// ErrMalformedResponse is returned when a 200 response lacks the current measurements.
	ErrMalformedResponse = errors.New("weather API response is missing weather data")
)

// Provider is implemented by each weather API backend.
type Provider interface {
	Name() string
	GetWeather(ctx context.Context, coords geocode.Coordinate) (*Record, error)
}

// Condition is a single weather condition as reported by the weather service, e.g.
// "clear sky" or "light rain".
type Condition struct {
	Description string
}

// Record holds the current weather for a location. Temperatures are in degrees Celsius,
// precipitation in millimetres over the last three hours, cloud coverage and humidity in
// percent and pressure in hPa.
type Record struct {
	Conditions      []Condition
	Temperature     float64
	TemperatureMin  float64
	TemperatureMax  float64
	Precipitation3h float64
	CloudCoverage   float64
	Humidity        float64
	Pressure        float64
}

// Descriptions returns the condition descriptions in reported order.
func (r *Record) Descriptions() []string {
	if r == nil {
		return nil
	}
	descs := make([]string, 0, len(r.Conditions))
	for _, cond := range r.Conditions {
		descs = append(descs, cond.Description)
	}
	return descs
}
