// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package bot answers weather commands: it parses the command, resolves the place, fetches
// the weather and renders the reply.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/wneessen/tenki/internal/chat"
	"github.com/wneessen/tenki/internal/command"
	"github.com/wneessen/tenki/internal/geocode"
	"github.com/wneessen/tenki/internal/logger"
	"github.com/wneessen/tenki/internal/metrics"
	"github.com/wneessen/tenki/internal/weather"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNoCommandMatch     = errors.New("no weather command")
	ErrGeocodeFailed      = errors.New("geocoding failed")
	ErrWeatherFetchFailed = errors.New("weather lookup failed")
	ErrRenderFailed       = errors.New("rendering reply failed")
)

// Result labels as returned by Kind
const (
	KindOK            = "ok"
	KindInvalidInput  = "invalid_input"
	KindNoMatch       = "no_match"
	KindGeocodeFailed = "geocode_failed"
	KindWeatherFailed = "weather_failed"
	KindRenderFailed  = "render_failed"
	KindUnknown       = "unknown"
)

// Renderer turns a weather record into reply text.
type Renderer interface {
	Render(record *weather.Record) (string, error)
}

// Reply is the answer to a weather command, addressed to the channel the command was
// posted in.
type Reply struct {
	Channel string
	Text    string
}

type Handler struct {
	geocoder geocode.Geocoder
	weather  weather.Provider
	renderer Renderer
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// New returns a Handler. The metrics are optional.
func New(coder geocode.Geocoder, provider weather.Provider, renderer Renderer, log *logger.Logger,
	m *metrics.Metrics,
) *Handler {
	return &Handler{
		geocoder: coder,
		weather:  provider,
		renderer: renderer,
		log:      log,
		metrics:  m,
	}
}

// Handle processes a single chat message. Each stage only runs if the previous one
// succeeded; the returned error wraps the sentinel of the failed stage. Handle holds no
// state between calls and is safe for concurrent use.
func (h *Handler) Handle(ctx context.Context, sess chat.Session, msg *chat.Message) (Reply, error) {
	if sess == nil || msg == nil {
		return Reply{}, fmt.Errorf("%w: session and message are required", ErrInvalidInput)
	}

	query, err := command.Parse(msg.Text)
	if err != nil {
		return Reply{}, fmt.Errorf("%w: %w", ErrNoCommandMatch, err)
	}

	log := h.log.With(slog.String("request_id", ulid.Make().String()),
		slog.String("session", sess.Name()), slog.String("channel", msg.Channel),
		slog.String("query", query.Text))
	log.Debug("weather command received", slog.String("user", msg.User))

	coords, err := h.geocoder.Search(ctx, query.Text)
	if err != nil {
		log.Warn("failed to resolve place", logger.Err(err))
		return Reply{}, fmt.Errorf("%w: %w", ErrGeocodeFailed, err)
	}
	h.metrics.ObserveGeocode(coords.CacheHit)
	log.Debug("place resolved", slog.Float64("lat", coords.Lat), slog.Float64("lon", coords.Lon),
		slog.Bool("cache_hit", coords.CacheHit))

	record, err := h.weather.GetWeather(ctx, coords)
	if err != nil {
		log.Warn("failed to fetch weather", slog.String("provider", h.weather.Name()), logger.Err(err))
		return Reply{}, fmt.Errorf("%w: %w", ErrWeatherFetchFailed, err)
	}

	text, err := h.renderer.Render(record)
	if err != nil {
		log.Error("failed to render reply", logger.Err(err))
		return Reply{}, fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}

	log.Info("weather command answered")
	return Reply{Channel: msg.Channel, Text: text}, nil
}

// Kind returns a stable label for the outcome of Handle, for use in logs and metrics.
func Kind(err error) string {
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrNoCommandMatch):
		return KindNoMatch
	case errors.Is(err, ErrGeocodeFailed):
		return KindGeocodeFailed
	case errors.Is(err, ErrWeatherFetchFailed):
		return KindWeatherFailed
	case errors.Is(err, ErrRenderFailed):
		return KindRenderFailed
	default:
		return KindUnknown
	}
}
