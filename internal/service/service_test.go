// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/wneessen/tenki/internal/bot"
	"github.com/wneessen/tenki/internal/chat/console"
	"github.com/wneessen/tenki/internal/config"
	"github.com/wneessen/tenki/internal/geocode"
	"github.com/wneessen/tenki/internal/http"
	"github.com/wneessen/tenki/internal/i18n"
	"github.com/wneessen/tenki/internal/logger"
	"github.com/wneessen/tenki/internal/presenter"
	"github.com/wneessen/tenki/internal/weather"
)

func TestNew(t *testing.T) {
	t.Run("new service succeeds", func(t *testing.T) {
		serv, err := testService(t, false)
		if err != nil {
			t.Fatalf("failed to create service: %s", err)
		}
		if serv.metrics == nil {
			t.Error("expected metrics to be initialized")
		}
	})
	t.Run("new service with nil logger succeeds", func(t *testing.T) {
		serv, err := testService(t, true)
		if err != nil {
			t.Fatalf("failed to create service: %s", err)
		}
		if serv.logger == nil {
			t.Error("expected default logger to be set")
		}
	})
	t.Run("new service without config fails", func(t *testing.T) {
		if _, err := New(nil, nil, nil); err == nil {
			t.Error("expected service creation to fail")
		}
	})
}

func TestService_selectGeocodeProvider(t *testing.T) {
	tests := []struct {
		name     string
		env      []string
		wantName string
		wantFail bool
	}{
		{
			"google without api-key",
			[]string{"TENKI_GEOCODER_PROVIDER=google"},
			"",
			true,
		},
		{
			"google with api-key",
			[]string{"TENKI_GEOCODER_PROVIDER=google", "TENKI_GEOCODER_APIKEY=abc"},
			"geocoder cache using google",
			false,
		},
		{
			"osm-nominatim",
			[]string{"TENKI_GEOCODER_PROVIDER=nominatim"},
			"geocoder cache using osm-nominatim",
			false,
		},
		{
			"opencage without api-key",
			[]string{"TENKI_GEOCODER_PROVIDER=opencage"},
			"",
			true,
		},
		{
			"opencage with api-key",
			[]string{"TENKI_GEOCODER_PROVIDER=opencage", "TENKI_GEOCODER_APIKEY=abc"},
			"geocoder cache using opencage",
			false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for _, envVars := range tc.env {
				key, val, ok := strings.Cut(envVars, "=")
				if !ok {
					t.Fatalf("invalid env var %q", envVars)
				}
				t.Setenv(key, val)
			}
			serv, err := testService(t, false)
			if err != nil {
				t.Fatalf("failed to create service: %s", err)
			}
			coder, err := serv.selectGeocodeProvider(t.Context(), http.New(serv.logger, 0), serv.t.Language())
			if tc.wantFail {
				if err == nil {
					t.Fatal("expected geocode provider selection to fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("failed to select geocode provider: %s", err)
			}
			if coder.Name() != tc.wantName {
				t.Errorf("expected geocoder name to be %q, got %q", tc.wantName, coder.Name())
			}
		})
	}
	t.Run("unsupported provider fails", func(t *testing.T) {
		serv, err := testService(t, false)
		if err != nil {
			t.Fatalf("failed to create service: %s", err)
		}
		serv.config.GeoCoder.Provider = "invalid"
		_, err = serv.selectGeocodeProvider(t.Context(), http.New(serv.logger, 0), serv.t.Language())
		if err == nil || !strings.Contains(err.Error(), "unsupported geocoder type: invalid") {
			t.Errorf("expected unsupported geocoder error, got %v", err)
		}
	})
}

func TestService_selectCacheStore(t *testing.T) {
	t.Run("memory backend", func(t *testing.T) {
		serv, err := testService(t, false)
		if err != nil {
			t.Fatalf("failed to create service: %s", err)
		}
		store, err := serv.selectCacheStore(t.Context())
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := store.(*geocode.MemoryStore); !ok {
			t.Errorf("expected memory store, got %T", store)
		}
	})
	t.Run("unreachable redis backend is not fatal", func(t *testing.T) {
		serv, err := testService(t, false)
		if err != nil {
			t.Fatalf("failed to create service: %s", err)
		}
		buf := &syncBuffer{buf: bytes.NewBuffer(nil)}
		serv.logger = logger.NewLogger(slog.LevelWarn, buf)
		serv.config.Cache.Backend = "redis"
		serv.config.Cache.RedisAddr = "127.0.0.1:1"
		if _, err = serv.selectCacheStore(t.Context()); err != nil {
			t.Fatal(err)
		}
		if len(serv.closers) != 1 {
			t.Errorf("expected redis store to be registered for closing, got %d closers", len(serv.closers))
		}
		serv.close()
		if !strings.Contains(buf.String(), "redis cache not reachable") {
			t.Errorf("expected warning about unreachable redis, got %q", buf.String())
		}
	})
	t.Run("unsupported backend fails", func(t *testing.T) {
		serv, err := testService(t, false)
		if err != nil {
			t.Fatalf("failed to create service: %s", err)
		}
		serv.config.Cache.Backend = "memcached"
		if _, err = serv.selectCacheStore(t.Context()); err == nil {
			t.Error("expected cache store selection to fail")
		}
	})
}

func TestService_selectWeatherProvider(t *testing.T) {
	tests := []struct {
		name       string
		provider   string
		apikey     string
		wantName   string
		shouldFail bool
	}{
		{"openweathermap without api-key", "openweathermap", "", "", true},
		{"openweathermap with api-key", "openweathermap", "abc", "openweathermap", false},
		{"open-meteo", "open-meteo", "", "open-meteo", false},
		{"unsupported provider", "invalid", "", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			serv, err := testService(t, false)
			if err != nil {
				t.Fatalf("failed to create service: %s", err)
			}
			serv.config.Weather.Provider = tc.provider
			serv.config.Weather.APIKey = tc.apikey
			provider, err := serv.selectWeatherProvider(http.New(serv.logger, 0))
			if tc.shouldFail {
				if err == nil {
					t.Fatal("expected select provider to fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("failed to select provider: %s", err)
			}
			if provider.Name() != tc.wantName {
				t.Errorf("expected provider name to be %q, got %q", tc.wantName, provider.Name())
			}
		})
	}
}

func TestService_Setup(t *testing.T) {
	t.Run("keyless providers are set up", func(t *testing.T) {
		serv, err := testService(t, false)
		if err != nil {
			t.Fatalf("failed to create service: %s", err)
		}
		serv.config.GeoCoder.Provider = "nominatim"
		serv.config.Weather.Provider = "open-meteo"
		if err = serv.Setup(t.Context()); err != nil {
			t.Fatalf("failed to set up service: %s", err)
		}
		if serv.handler == nil || serv.geocoder == nil {
			t.Error("expected handler and geocoder to be set")
		}
	})
	t.Run("broken reply template fails", func(t *testing.T) {
		serv, err := testService(t, false)
		if err != nil {
			t.Fatalf("failed to create service: %s", err)
		}
		serv.config.GeoCoder.Provider = "nominatim"
		serv.config.Weather.Provider = "open-meteo"
		serv.config.Templates.Reply = "{{ .Temperature }"
		err = serv.Setup(t.Context())
		if err == nil || !strings.Contains(err.Error(), "failed to create presenter") {
			t.Errorf("expected presenter error, got %v", err)
		}
	})
}

func TestService_Run(t *testing.T) {
	t.Run("commands are answered until the session ends", func(t *testing.T) {
		serv := testServiceWithMocks(t)
		out := &syncBuffer{buf: bytes.NewBuffer(nil)}
		sess := console.New(strings.NewReader("天気@東京\nこんにちは\n天気@unknown\n"), out, "tester", "")
		if err := serv.Run(t.Context(), sess); err != nil {
			t.Fatalf("failed to run service: %s", err)
		}

		want := ":sunny: *_20℃_*\n最低気温 18℃, 最高気温 22℃\n降水量 0mm, 雲の量 10％\n湿度 50％, 気圧 1013hpa\n"
		if out.String() != want {
			t.Errorf("expected console output to be %q, got %q", want, out.String())
		}
		results := map[string]float64{bot.KindOK: 1, bot.KindNoMatch: 1, bot.KindGeocodeFailed: 1}
		for kind, count := range results {
			if got := testutil.ToFloat64(serv.metrics.CommandsTotal.WithLabelValues(kind)); got != count {
				t.Errorf("expected %s count to be %v, got %v", kind, count, got)
			}
		}
	})
	t.Run("start the service and gracefully shut it down", func(t *testing.T) {
		serv := testServiceWithMocks(t)
		reader, writer := io.Pipe()
		sess := console.New(reader, io.Discard, "tester", "")

		ctx, cancel := context.WithCancel(t.Context())
		errChan := make(chan error, 1)
		go func() { errChan <- serv.Run(ctx, sess) }()

		cancel()
		// the console blocks in the read until its input is closed
		_ = writer.Close()
		select {
		case err := <-errChan:
			if err != nil {
				t.Errorf("expected clean shutdown, got %s", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("service did not shut down")
		}
	})
	t.Run("starting service without session fails", func(t *testing.T) {
		serv, err := testService(t, false)
		if err != nil {
			t.Fatalf("failed to create service: %s", err)
		}
		if err = serv.Run(t.Context(), nil); !errors.Is(err, ErrNoSession) {
			t.Errorf("expected error to be %s, got %v", ErrNoSession, err)
		}
	})
	t.Run("starting service fails due to invalid geocoding provider", func(t *testing.T) {
		serv, err := testService(t, false)
		if err != nil {
			t.Fatalf("failed to create service: %s", err)
		}
		serv.config.GeoCoder.Provider = "invalid"
		err = serv.Run(t.Context(), console.New(strings.NewReader(""), io.Discard, "tester", ""))
		wantErr := `failed to create geocode provider: unsupported geocoder type: invalid`
		if err == nil || !strings.Contains(err.Error(), wantErr) {
			t.Errorf("expected error to contain %q, got %v", wantErr, err)
		}
	})
	t.Run("starting service fails due to invalid weather provider", func(t *testing.T) {
		serv, err := testService(t, false)
		if err != nil {
			t.Fatalf("failed to create service: %s", err)
		}
		serv.config.GeoCoder.Provider = "nominatim"
		serv.config.Weather.Provider = "invalid"
		err = serv.Run(t.Context(), console.New(strings.NewReader(""), io.Discard, "tester", ""))
		wantErr := `failed to create weather provider: unsupported weather provider: invalid`
		if err == nil || !strings.Contains(err.Error(), wantErr) {
			t.Errorf("expected error to contain %q, got %v", wantErr, err)
		}
	})
}

func TestService_pruneCache(t *testing.T) {
	serv := testServiceWithMocks(t)
	store := geocode.NewMemoryStore()
	serv.geocoder = geocode.NewCachedGeocoder(&mockGeocoder{}, store, time.Hour, time.Hour)
	if err := store.Set(t.Context(), "expired", geocode.Coordinate{}, -time.Second); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(t.Context(), "fresh", geocode.Coordinate{Found: true}, time.Hour); err != nil {
		t.Fatal(err)
	}
	serv.pruneCache(t.Context())
	if store.Len() != 1 {
		t.Errorf("expected 1 remaining cache entry, got %d", store.Len())
	}
	if got := testutil.ToFloat64(serv.metrics.CachePrunedTotal); got != 1 {
		t.Errorf("expected 1 pruned entry to be counted, got %v", got)
	}
}

func TestService_HandleSignals(t *testing.T) {
	t.Run("USR1 signal prunes the cache", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		serv := testServiceWithMocks(t)
		store := geocode.NewMemoryStore()
		serv.geocoder = geocode.NewCachedGeocoder(&mockGeocoder{}, store, time.Hour, time.Hour)
		if err := store.Set(t.Context(), "expired", geocode.Coordinate{}, -time.Second); err != nil {
			t.Fatal(err)
		}
		sigChan := make(chan os.Signal, 1)
		serv.SignalSrc.Notify(sigChan, syscall.SIGUSR1, syscall.SIGUSR2)
		go func() {
			defer serv.SignalSrc.Stop(sigChan)
			serv.HandleSignals(ctx, sigChan)
		}()

		sigChan <- syscall.SIGUSR1
		time.Sleep(time.Millisecond * 100)
		if store.Len() != 0 {
			t.Errorf("expected cache to be pruned, got %d entries", store.Len())
		}
		cancel()
	})
	t.Run("USR2 signal logs the status", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		serv := testServiceWithMocks(t)
		buf := &syncBuffer{buf: bytes.NewBuffer(nil)}
		serv.logger = logger.NewLogger(slog.LevelInfo, buf)
		sigChan := make(chan os.Signal, 1)
		serv.SignalSrc.Notify(sigChan, syscall.SIGUSR1, syscall.SIGUSR2)
		go func() {
			defer serv.SignalSrc.Stop(sigChan)
			serv.HandleSignals(ctx, sigChan)
		}()

		sigChan <- syscall.SIGUSR2
		time.Sleep(time.Millisecond * 100)
		wantLog := `msg="service status" geocoder=none weather=openweathermap cache_backend=memory workers=4`
		if !strings.Contains(buf.String(), wantLog) {
			t.Errorf("expected log to contain %q, got %q", wantLog, buf.String())
		}
		cancel()
		time.Sleep(time.Millisecond * 100)
	})
}

func testService(_ *testing.T, nilLogger bool) (*Service, error) {
	conf, err := config.New()
	if err != nil {
		return nil, err
	}

	var log *logger.Logger
	if !nilLogger {
		log = logger.NewLogger(conf.LogLevel, io.Discard)
	}

	lang, err := i18n.New(conf.Locale)
	if err != nil {
		return nil, err
	}
	return New(conf, log, lang)
}

func testServiceWithMocks(t *testing.T) *Service {
	t.Helper()
	serv, err := testService(t, false)
	if err != nil {
		t.Fatalf("failed to create service: %s", err)
	}
	pres, err := presenter.New(serv.config, serv.t)
	if err != nil {
		t.Fatalf("failed to create presenter: %s", err)
	}
	serv.handler = bot.New(&mockGeocoder{}, &weatherProv{}, pres, serv.logger, serv.metrics)
	return serv
}

type (
	weatherProv  struct{}
	mockGeocoder struct{}
	syncBuffer   struct {
		mu  sync.Mutex
		buf *bytes.Buffer
	}
)

func (m *mockGeocoder) Name() string {
	return "mock geocoder"
}

func (m *mockGeocoder) Search(_ context.Context, query string) (geocode.Coordinate, error) {
	if query == "unknown" {
		return geocode.Coordinate{}, geocode.ErrNoResults
	}
	return geocode.Coordinate{Lat: 35.6895, Lon: 139.6917, Found: true}, nil
}

func (w *weatherProv) Name() string {
	return "mock weather provider"
}

func (w *weatherProv) GetWeather(context.Context, geocode.Coordinate) (*weather.Record, error) {
	return &weather.Record{
		Conditions:     []weather.Condition{{Description: "clear sky"}},
		Temperature:    20,
		TemperatureMin: 18,
		TemperatureMax: 22,
		CloudCoverage:  10,
		Humidity:       50,
		Pressure:       1013,
	}, nil
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}
