// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/wneessen/tenki/internal/geocode"
)

// BreakerConfig controls when a BreakerProvider stops calling its provider.
type BreakerConfig struct {
	MaxFailures uint32
	Interval    time.Duration
	Timeout     time.Duration
}

// BreakerProvider fails fast while its provider keeps failing.
type BreakerProvider struct {
	provider Provider
	cb       *gobreaker.CircuitBreaker
}

func NewBreakerProvider(provider Provider, cfg BreakerConfig) *BreakerProvider {
	settings := gobreaker.Settings{
		Name:        provider.Name(),
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			// our own input errors say nothing about the health of the API
			return err == nil || errors.Is(err, ErrInvalidCoordinate)
		},
	}
	return &BreakerProvider{provider: provider, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (b *BreakerProvider) Name() string {
	return b.provider.Name()
}

func (b *BreakerProvider) GetWeather(ctx context.Context, coords geocode.Coordinate) (*Record, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.provider.GetWeather(ctx, coords)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%s unavailable: %w", b.provider.Name(), err)
		}
		return nil, err
	}
	record, ok := result.(*Record)
	if !ok || record == nil {
		return nil, fmt.Errorf("%s returned unexpected result", b.provider.Name())
	}
	return record, nil
}
