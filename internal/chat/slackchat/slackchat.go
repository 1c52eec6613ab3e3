// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package slackchat implements a chat.Session on a Slack Socket Mode connection.
package slackchat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/wneessen/tenki/internal/chat"
	"github.com/wneessen/tenki/internal/logger"
)

const name = "slack"

var (
	ErrMissingBotToken = errors.New("slack bot token is required")
	ErrMissingAppToken = errors.New("slack app-level token is required for socket mode")
)

type Slack struct {
	api      *slack.Client
	client   *socketmode.Client
	log      *logger.Logger
	ack      func(req socketmode.Request, payload ...interface{})
	messages chan *chat.Message

	botUserID string
}

// New returns a Slack session. The bot token (xoxb-) is used for the Web API, the app-level
// token (xapp-) opens the Socket Mode connection.
func New(botToken, appToken string, log *logger.Logger, opts ...slack.Option) (*Slack, error) {
	if botToken == "" {
		return nil, ErrMissingBotToken
	}
	if appToken == "" {
		return nil, ErrMissingAppToken
	}
	opts = append(opts, slack.OptionAppLevelToken(appToken))
	api := slack.New(botToken, opts...)
	client := socketmode.New(api)

	return &Slack{
		api:      api,
		client:   client,
		log:      log,
		ack:      client.Ack,
		messages: make(chan *chat.Message),
	}, nil
}

func (s *Slack) Name() string {
	return name
}

func (s *Slack) Messages() <-chan *chat.Message {
	return s.messages
}

// Run identifies the bot user, opens the Socket Mode connection and forwards incoming
// channel messages until the context is canceled.
func (s *Slack) Run(ctx context.Context) error {
	defer close(s.messages)

	auth, err := s.api.AuthTestContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to authenticate with slack: %w", err)
	}
	s.botUserID = auth.UserID
	s.log.Info("authenticated with slack", slog.String("team", auth.Team),
		slog.String("user", auth.User))

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.client.RunContext(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err = <-errChan:
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("slack socket mode connection failed: %w", err)
		case evt, ok := <-s.client.Events:
			if !ok {
				return nil
			}
			msg := s.handleEvent(evt)
			if msg == nil {
				continue
			}
			select {
			case s.messages <- msg:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// Post sends the text to the channel as the bot user.
func (s *Slack) Post(ctx context.Context, channel, text string) error {
	_, _, err := s.api.PostMessageContext(ctx, channel, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("failed to post message to slack channel %s: %w", channel, err)
	}
	return nil
}

// handleEvent acknowledges the event if required and returns the chat message it carries,
// or nil for anything the bot does not answer.
func (s *Slack) handleEvent(evt socketmode.Event) *chat.Message {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		s.log.Debug("connecting to slack socket mode")
		return nil
	case socketmode.EventTypeConnected:
		s.log.Info("connected to slack socket mode")
		return nil
	case socketmode.EventTypeConnectionError:
		s.log.Warn("slack socket mode connection error, retrying")
		return nil
	case socketmode.EventTypeEventsAPI:
	default:
		return nil
	}

	if evt.Request != nil {
		s.ack(*evt.Request)
	}
	apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
	if !ok || apiEvent.Type != slackevents.CallbackEvent {
		return nil
	}
	msgEvent, ok := apiEvent.InnerEvent.Data.(*slackevents.MessageEvent)
	if !ok || msgEvent == nil {
		return nil
	}

	// ignore edits, joins and other bots including ourselves
	if msgEvent.SubType != "" || msgEvent.BotID != "" || msgEvent.User == "" ||
		msgEvent.User == s.botUserID || msgEvent.Text == "" {
		return nil
	}

	return &chat.Message{
		Channel: msgEvent.Channel,
		User:    msgEvent.User,
		Text:    msgEvent.Text,
	}
}
