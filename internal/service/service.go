// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/vorlif/spreak"
	"golang.org/x/text/language"

	"github.com/wneessen/tenki/internal/bot"
	"github.com/wneessen/tenki/internal/chat"
	"github.com/wneessen/tenki/internal/config"
	"github.com/wneessen/tenki/internal/geocode"
	"github.com/wneessen/tenki/internal/http"
	"github.com/wneessen/tenki/internal/logger"
	"github.com/wneessen/tenki/internal/metrics"
	"github.com/wneessen/tenki/internal/presenter"
)

var ErrNoSession = errors.New("a chat session is required")

type Service struct {
	config    *config.Config
	logger    *logger.Logger
	metrics   *metrics.Metrics
	scheduler gocron.Scheduler
	t         *spreak.Localizer
	SignalSrc signalSource

	handler  *bot.Handler
	geocoder *geocode.CachedGeocoder
	closers  []io.Closer
}

// New returns a Service. A nil logger is replaced by a stderr logger at the configured level.
func New(conf *config.Config, log *logger.Logger, t *spreak.Localizer) (*Service, error) {
	if conf == nil {
		return nil, errors.New("config is required")
	}
	if log == nil {
		log = logger.New(conf.LogLevel)
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	service := &Service{
		config:    conf,
		logger:    log,
		metrics:   metrics.New(),
		scheduler: scheduler,
		t:         t,
		SignalSrc: stdLibSignalSource{},
	}
	return service, nil
}

// Run answers the weather commands of the chat session until the session ends or the
// context is canceled. Messages are processed by a fixed number of workers.
func (s *Service) Run(ctx context.Context, sess chat.Session) error {
	if sess == nil {
		return ErrNoSession
	}
	if s.handler == nil {
		if err := s.Setup(ctx); err != nil {
			return err
		}
	}
	defer s.close()

	// Start scheduled jobs
	if err := s.createScheduledJob(ctx, s.config.Cache.PruneInterval, s.pruneCache,
		"geocode_cache_prune_job"); err != nil {
		return err
	}
	s.scheduler.Start()

	if s.config.Metrics.Listen != "" {
		go func() {
			s.logger.Info("serving metrics", slog.String("listen", s.config.Metrics.Listen))
			if err := s.metrics.ListenAndServe(ctx, s.config.Metrics.Listen); err != nil {
				s.logger.Error("metrics endpoint failed", logger.Err(err))
			}
		}()
	}

	var wg sync.WaitGroup
	for i := 0; i < s.config.Bot.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.processMessages(ctx, sess)
		}()
	}

	s.logger.Info("starting chat session", slog.String("session", sess.Name()),
		slog.Int("workers", s.config.Bot.Workers))
	runErr := sess.Run(ctx)
	wg.Wait()
	s.logger.Info("chat session ended", slog.String("session", sess.Name()))

	if err := s.scheduler.Shutdown(); err != nil {
		return errors.Join(runErr, fmt.Errorf("failed to shut down scheduler: %w", err))
	}
	if runErr != nil {
		return fmt.Errorf("chat session failed: %w", runErr)
	}
	return nil
}

// Setup creates the configured providers and the command handler. Run calls it if it has
// not been called before.
func (s *Service) Setup(ctx context.Context) error {
	lang := language.Und
	if s.t != nil {
		lang = s.t.Language()
	}
	httpClient := http.New(s.logger, s.config.HTTP.Timeout)

	coder, err := s.selectGeocodeProvider(ctx, httpClient, lang)
	if err != nil {
		return fmt.Errorf("failed to create geocode provider: %w", err)
	}
	provider, err := s.selectWeatherProvider(httpClient)
	if err != nil {
		return fmt.Errorf("failed to create weather provider: %w", err)
	}
	pres, err := presenter.New(s.config, s.t)
	if err != nil {
		return fmt.Errorf("failed to create presenter: %w", err)
	}

	s.geocoder = coder
	s.handler = bot.New(coder, provider, pres, s.logger, s.metrics)
	s.logger.Debug("providers selected", slog.String("geocoder", coder.Name()),
		slog.String("weather", provider.Name()))
	return nil
}

func (s *Service) createScheduledJob(ctx context.Context, interval time.Duration, task func(context.Context),
	jobName string,
) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(jobName),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", jobName, err)
	}
	return nil
}

// processMessages handles messages from the session until its message channel is closed.
func (s *Service) processMessages(ctx context.Context, sess chat.Session) {
	for msg := range sess.Messages() {
		s.handleMessage(ctx, sess, msg)
	}
}

func (s *Service) handleMessage(ctx context.Context, sess chat.Session, msg *chat.Message) {
	start := time.Now()
	reply, err := s.handler.Handle(ctx, sess, msg)
	kind := bot.Kind(err)
	s.metrics.ObserveCommand(kind, time.Since(start))

	switch kind {
	case bot.KindOK:
	case bot.KindNoMatch:
		return
	default:
		s.logger.Debug("weather command not answered", slog.String("result", kind), logger.Err(err))
		return
	}

	if err = sess.Post(ctx, reply.Channel, reply.Text); err != nil {
		s.logger.Error("failed to post weather reply", slog.String("channel", reply.Channel), logger.Err(err))
	}
}

// pruneCache removes expired entries from the geocode cache.
func (s *Service) pruneCache(context.Context) {
	if s.geocoder == nil {
		return
	}
	removed := s.geocoder.Prune()
	s.metrics.ObservePruned(removed)
	if removed > 0 {
		s.logger.Debug("pruned geocode cache", slog.Int("removed", removed))
	}
}

func (s *Service) close() {
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			s.logger.Error("failed to close resource", logger.Err(err))
		}
	}
	s.closers = nil
}
