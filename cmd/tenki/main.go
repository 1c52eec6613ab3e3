// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package main implements the tenki Slack weather bot.
package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/wneessen/tenki/internal/chat"
	"github.com/wneessen/tenki/internal/chat/console"
	"github.com/wneessen/tenki/internal/chat/slackchat"
	"github.com/wneessen/tenki/internal/config"
	"github.com/wneessen/tenki/internal/i18n"
	"github.com/wneessen/tenki/internal/logger"
	"github.com/wneessen/tenki/internal/service"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGABRT, os.Interrupt)
	defer cancel()

	// Initialize Logger
	log := logger.New(slog.LevelError)

	// Tokens are usually kept in a .env file next to the binary
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Error("failed to load .env file", logger.Err(err))
		os.Exit(1)
	}

	confPath := flag.String("config", "", "path to the config file")
	useConsole := flag.Bool("console", false, "read weather commands from stdin instead of Slack")
	flag.Parse()

	conf, err := loadConfig(*confPath)
	if err != nil {
		log.Error("failed to load config", logger.Err(err))
		os.Exit(1)
	}

	log = logger.New(conf.LogLevel)
	t, err := i18n.New(conf.Locale)
	if err != nil {
		log.Error("failed to initialize localizer", logger.Err(err))
		os.Exit(1)
	}

	// Initialize the service
	serv, err := service.New(conf, log, t)
	if err != nil {
		log.Error("failed to initialize tenki service", logger.Err(err))
		os.Exit(1)
	}
	if err = serv.Setup(ctx); err != nil {
		log.Error("failed to set up tenki service", logger.Err(err))
		os.Exit(1)
	}

	var sess chat.Session
	if *useConsole {
		sess = console.New(os.Stdin, os.Stdout, currentUser(),
			t.Get("Type a command like 天気@東京, or press Ctrl+D to quit."))
	} else {
		sess, err = slackchat.New(conf.Slack.BotToken, conf.Slack.AppToken, log)
		if err != nil {
			log.Error("failed to create slack session", logger.Err(err))
			os.Exit(1)
		}
	}

	sigChan := make(chan os.Signal, 1)
	serv.SignalSrc.Notify(sigChan, syscall.SIGUSR1, syscall.SIGUSR2)
	defer serv.SignalSrc.Stop(sigChan)
	go serv.HandleSignals(ctx, sigChan)

	// Start the service loop
	log.Info(t.Get("starting tenki service"), slog.String("version", version),
		slog.String("commit", commit), slog.String("date", date))
	if err = serv.Run(ctx, sess); err != nil {
		log.Error(t.Get("tenki service failed"), logger.Err(err))
	}
	log.Info(t.Get("shutting down tenki service"))
}

// loadConfig reads the config file given on the command line, then the one in the default
// location. Without either, the config is read from the environment only.
func loadConfig(confPath string) (*config.Config, error) {
	if confPath != "" {
		return config.NewFromFile(filepath.Dir(confPath), filepath.Base(confPath))
	}
	if path, file := findConfigFile(); path != "" && file != "" {
		return config.NewFromFile(path, file)
	}
	return config.New()
}

func findConfigFile() (string, string) {
	homedir, err := os.UserHomeDir()
	if err != nil {
		return "", ""
	}
	exts := []string{"toml", "yaml", "yml", "json"}
	for _, ext := range exts {
		path := filepath.Join(homedir, ".config", "tenki", "config."+ext)
		if _, err = os.Stat(path); err == nil {
			return filepath.Dir(path), filepath.Base(path)
		}
	}
	return "", ""
}

func currentUser() string {
	u, err := user.Current()
	if err != nil {
		return "console"
	}
	return u.Username
}
