// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

type signalSource interface {
	Notify(c chan<- os.Signal, sig ...os.Signal)
	Stop(c chan<- os.Signal)
}

// stdLibSignalSource is the production implementation.
type stdLibSignalSource struct{}

func (stdLibSignalSource) Notify(c chan<- os.Signal, sig ...os.Signal) {
	signal.Notify(c, sig...)
}

func (stdLibSignalSource) Stop(c chan<- os.Signal) {
	signal.Stop(c)
}

// HandleSignals prunes the geocode cache on SIGUSR1 and logs the service status on SIGUSR2.
func (s *Service) HandleSignals(ctx context.Context, sigChan chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigChan:
			switch sig {
			case syscall.SIGUSR1:
				s.logger.Info("pruning geocode cache on request")
				s.pruneCache(ctx)
			case syscall.SIGUSR2:
				s.logStatus()
			}
		}
	}
}

func (s *Service) logStatus() {
	geocoder := "none"
	if s.geocoder != nil {
		geocoder = s.geocoder.Name()
	}
	s.logger.Info("service status", slog.String("geocoder", geocoder),
		slog.String("weather", s.config.Weather.Provider),
		slog.String("cache_backend", s.config.Cache.Backend),
		slog.Int("workers", s.config.Bot.Workers))
}
