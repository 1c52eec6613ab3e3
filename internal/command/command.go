// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package command recognizes the weather chat command and extracts its place query.
package command

import (
	"errors"
	"regexp"
	"strings"
)

// Separator divides the trigger word from the place query.
const Separator = "@"

// ErrNoMatch is returned when a text is not a weather command or carries no query.
var ErrNoMatch = errors.New("text is not a weather command")

var (
	trigger    = regexp.MustCompile(`(?im)^(てんき|天気|tenki|tennki)@.+$`)
	normalizer = strings.NewReplacer("\n", "", "\r", "", "＠", Separator)
)

// Query is the place name a weather command asks for.
type Query struct {
	Text string
}

// Parse checks raw chat text against the trigger grammar and returns the place query
// following the first separator.
func Parse(raw string) (Query, error) {
	text := normalizer.Replace(raw)
	if !trigger.MatchString(text) {
		return Query{}, ErrNoMatch
	}

	_, query, _ := strings.Cut(text, Separator)
	if query == "" {
		return Query{}, ErrNoMatch
	}
	return Query{Text: query}, nil
}
