// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerConfig controls when a BreakerGeocoder stops calling its provider.
type BreakerConfig struct {
	MaxFailures uint32
	Interval    time.Duration
	Timeout     time.Duration
}

// BreakerGeocoder fails fast while its provider keeps failing. Unknown places count as
// successful calls.
type BreakerGeocoder struct {
	coder Geocoder
	cb    *gobreaker.CircuitBreaker
}

func NewBreakerGeocoder(coder Geocoder, cfg BreakerConfig) *BreakerGeocoder {
	settings := gobreaker.Settings{
		Name:        coder.Name(),
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNoResults) || errors.Is(err, ErrEmptyQuery)
		},
	}
	return &BreakerGeocoder{coder: coder, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (b *BreakerGeocoder) Name() string {
	return b.coder.Name()
}

func (b *BreakerGeocoder) Search(ctx context.Context, query string) (Coordinate, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.coder.Search(ctx, query)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Coordinate{}, fmt.Errorf("%s unavailable: %w", b.coder.Name(), err)
		}
		return Coordinate{}, err
	}
	coords, ok := result.(Coordinate)
	if !ok {
		return Coordinate{}, fmt.Errorf("%s returned unexpected result", b.coder.Name())
	}
	return coords, nil
}
