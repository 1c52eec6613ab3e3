// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package console implements a chat.Session on a terminal, one message per input line.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/wneessen/tenki/internal/chat"
)

const (
	// Channel is the channel name of all console messages
	Channel = "console"
	name    = "console"
)

type Console struct {
	in       io.Reader
	out      io.Writer
	user     string
	greeting string

	mu       sync.Mutex
	messages chan *chat.Message
}

// New returns a console session that reads from in and posts to out. A non-empty greeting
// is written once when the session starts.
func New(in io.Reader, out io.Writer, user, greeting string) *Console {
	return &Console{
		in:       in,
		out:      out,
		user:     user,
		greeting: greeting,
		messages: make(chan *chat.Message),
	}
}

func (c *Console) Name() string {
	return name
}

func (c *Console) Messages() <-chan *chat.Message {
	return c.messages
}

// Run scans the input line by line until EOF or until the context is canceled.
func (c *Console) Run(ctx context.Context) error {
	defer close(c.messages)

	if c.greeting != "" {
		if err := c.write(c.greeting); err != nil {
			return err
		}
	}

	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		msg := &chat.Message{Channel: Channel, User: c.user, Text: scanner.Text()}
		select {
		case c.messages <- msg:
		case <-ctx.Done():
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read console input: %w", err)
	}
	return nil
}

func (c *Console) Post(_ context.Context, channel, text string) error {
	if channel != Channel {
		return fmt.Errorf("unknown console channel: %s", channel)
	}
	return c.write(text)
}

func (c *Console) write(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := io.WriteString(c.out, text); err != nil {
		return fmt.Errorf("failed to write to console: %w", err)
	}
	if len(text) > 0 && text[len(text)-1] != '\n' {
		if _, err := io.WriteString(c.out, "\n"); err != nil {
			return fmt.Errorf("failed to write to console: %w", err)
		}
	}
	return nil
}
