// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kkyr/fig"
)

const (
	configEnv       = "TENKI"
	DefaultReplyTpl = "{{icons .Conditions}} *_{{.Temperature}}℃_*\n" +
		"最低気温 {{.TemperatureMin}}℃, 最高気温 {{.TemperatureMax}}℃\n" +
		"降水量 {{.Precipitation3h}}mm, 雲の量 {{.CloudCoverage}}％\n" +
		"湿度 {{.Humidity}}％, 気圧 {{.Pressure}}hpa\n"
)

// Config represents the application's configuration structure.
type Config struct {
	Locale   string     `fig:"locale" default:"ja"`
	LogLevel slog.Level `fig:"loglevel" default:"0"`

	// A zero value in the numeric sections selects the default
	Bot struct {
		Workers int `fig:"workers" default:"4"`
	} `fig:"bot"`

	Slack struct {
		BotToken string `fig:"bot_token"`
		AppToken string `fig:"app_token"`
	} `fig:"slack"`

	GeoCoder struct {
		// Allowed values: google, nominatim, opencage
		Provider     string        `fig:"provider" default:"google"`
		APIKey       string        `fig:"apikey"`
		CacheTTLHit  time.Duration `fig:"cache_ttl_hit" default:"24h"`
		CacheTTLMiss time.Duration `fig:"cache_ttl_miss" default:"10m"`
	} `fig:"geocoder"`

	Weather struct {
		// Allowed values: openweathermap, open-meteo
		Provider string `fig:"provider" default:"openweathermap"`
		APIKey   string `fig:"apikey"`
	} `fig:"weather"`

	Cache struct {
		// Allowed values: memory, redis
		Backend       string        `fig:"backend" default:"memory"`
		RedisAddr     string        `fig:"redis_addr"`
		RedisDB       int           `fig:"redis_db" default:"0"`
		PruneInterval time.Duration `fig:"prune_interval" default:"10m"`
	} `fig:"cache"`

	Breaker struct {
		MaxFailures uint32        `fig:"max_failures" default:"5"`
		Interval    time.Duration `fig:"interval" default:"1m"`
		Timeout     time.Duration `fig:"timeout" default:"30s"`
	} `fig:"breaker"`

	HTTP struct {
		Timeout time.Duration `fig:"timeout" default:"10s"`
	} `fig:"http"`

	Templates struct {
		Reply string `fig:"reply"`
	} `fig:"templates"`

	Metrics struct {
		// Empty disables the metrics endpoint
		Listen string `fig:"listen"`
	} `fig:"metrics"`
}

func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func (c *Config) Validate() error {
	if c.Locale == "" {
		c.Locale = getLocale()
	}
	if c.Bot.Workers < 1 {
		return fmt.Errorf("invalid number of bot workers: %d", c.Bot.Workers)
	}
	switch strings.ToLower(c.GeoCoder.Provider) {
	case "google", "nominatim", "opencage":
	default:
		return fmt.Errorf("invalid geocoder provider: %s", c.GeoCoder.Provider)
	}
	switch strings.ToLower(c.Weather.Provider) {
	case "openweathermap", "open-meteo":
	default:
		return fmt.Errorf("invalid weather provider: %s", c.Weather.Provider)
	}
	switch strings.ToLower(c.Cache.Backend) {
	case "memory":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("redis cache backend requires a redis address")
		}
	default:
		return fmt.Errorf("invalid cache backend: %s", c.Cache.Backend)
	}
	if c.Cache.PruneInterval <= 0 {
		return fmt.Errorf("invalid cache prune interval: %s", c.Cache.PruneInterval)
	}
	if c.Breaker.MaxFailures < 1 {
		return fmt.Errorf("invalid circuit breaker failure threshold: %d", c.Breaker.MaxFailures)
	}
	if c.Templates.Reply == "" {
		c.Templates.Reply = DefaultReplyTpl
	}

	return nil
}

func getLocale() string {
	locale := os.Getenv("LC_MESSAGES")
	if idx := strings.Index(locale, "."); idx != -1 {
		lang := locale[:idx]
		return strings.ReplaceAll(lang, "_", "-")
	}
	return locale
}
