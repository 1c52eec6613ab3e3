// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package chat defines the connection between the bot and a chat system.
package chat

import "context"

// Message is a single chat line received by the bot.
type Message struct {
	Channel string
	User    string
	Text    string
}

// Session is a connection to a chat system.
//
// Run receives messages until the context is canceled or the connection ends and closes
// the Messages channel before it returns. Post may be called concurrently.
type Session interface {
	Name() string
	Run(ctx context.Context) error
	Messages() <-chan *Message
	Post(ctx context.Context, channel, text string) error
}
