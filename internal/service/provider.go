// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/tenki/internal/geocode"
	"github.com/wneessen/tenki/internal/geocode/provider/google"
	"github.com/wneessen/tenki/internal/geocode/provider/opencage"
	nominatim "github.com/wneessen/tenki/internal/geocode/provider/osm-nominatim"
	"github.com/wneessen/tenki/internal/geocode/redisstore"
	"github.com/wneessen/tenki/internal/http"
	"github.com/wneessen/tenki/internal/logger"
	"github.com/wneessen/tenki/internal/weather"
	openmeteo "github.com/wneessen/tenki/internal/weather/provider/open-meteo"
	"github.com/wneessen/tenki/internal/weather/provider/openweathermap"
)

const redisPingTimeout = 3 * time.Second

// selectGeocodeProvider returns the configured geocoder behind a circuit breaker and the
// geocode cache.
func (s *Service) selectGeocodeProvider(ctx context.Context, client *http.Client, lang language.Tag,
) (*geocode.CachedGeocoder, error) {
	var coder geocode.Geocoder
	conf := s.config

	switch strings.ToLower(conf.GeoCoder.Provider) {
	case "google":
		if conf.GeoCoder.APIKey == "" {
			return nil, fmt.Errorf("google geocoder requires an API key")
		}
		coder = google.New(client, lang, conf.GeoCoder.APIKey)
	case "nominatim":
		coder = nominatim.New(client, lang)
	case "opencage":
		if conf.GeoCoder.APIKey == "" {
			return nil, fmt.Errorf("opencage geocoder requires an API key")
		}
		coder = opencage.New(client, lang, conf.GeoCoder.APIKey)
	default:
		return nil, fmt.Errorf("unsupported geocoder type: %s", conf.GeoCoder.Provider)
	}

	store, err := s.selectCacheStore(ctx)
	if err != nil {
		return nil, err
	}
	breaker := geocode.NewBreakerGeocoder(coder, geocode.BreakerConfig{
		MaxFailures: conf.Breaker.MaxFailures,
		Interval:    conf.Breaker.Interval,
		Timeout:     conf.Breaker.Timeout,
	})
	return geocode.NewCachedGeocoder(breaker, store, conf.GeoCoder.CacheTTLHit, conf.GeoCoder.CacheTTLMiss), nil
}

func (s *Service) selectCacheStore(ctx context.Context) (geocode.Store, error) {
	switch strings.ToLower(s.config.Cache.Backend) {
	case "memory":
		return geocode.NewMemoryStore(), nil
	case "redis":
		store := redisstore.New(s.config.Cache.RedisAddr, s.config.Cache.RedisDB)
		s.closers = append(s.closers, store)

		// An unreachable server is not fatal, lookups just bypass the cache
		ctxPing, cancelPing := context.WithTimeout(ctx, redisPingTimeout)
		defer cancelPing()
		if err := store.Ping(ctxPing); err != nil {
			s.logger.Warn("redis cache not reachable, geocoding results will not be cached until it is",
				logger.Err(err))
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", s.config.Cache.Backend)
	}
}

// selectWeatherProvider returns the configured weather provider behind a circuit breaker.
func (s *Service) selectWeatherProvider(client *http.Client) (weather.Provider, error) {
	var provider weather.Provider
	conf := s.config

	switch strings.ToLower(conf.Weather.Provider) {
	case "openweathermap":
		if conf.Weather.APIKey == "" {
			return nil, fmt.Errorf("openweathermap weather provider requires an API key")
		}
		provider = openweathermap.New(client, conf.Weather.APIKey)
	case "open-meteo":
		om, err := openmeteo.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create Open-Meteo weather provider: %w", err)
		}
		provider = om
	default:
		return nil, fmt.Errorf("unsupported weather provider: %s", conf.Weather.Provider)
	}

	return weather.NewBreakerProvider(provider, weather.BreakerConfig{
		MaxFailures: conf.Breaker.MaxFailures,
		Interval:    conf.Breaker.Interval,
		Timeout:     conf.Breaker.Timeout,
	}), nil
}
