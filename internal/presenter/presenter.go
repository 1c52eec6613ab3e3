// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package presenter renders weather records into chat replies.
package presenter

import (
	"bytes"
	"errors"
	"fmt"
	"text/template"

	"github.com/vorlif/spreak"

	"github.com/wneessen/tenki/internal/config"
	"github.com/wneessen/tenki/internal/weather"
)

// ErrNilRecord is returned when Render is called without a weather record.
var ErrNilRecord = errors.New("weather record must not be nil")

type Presenter struct {
	localizer *spreak.Localizer
	reply     *template.Template
}

// New parses the configured reply template. An empty template selects the built-in
// default. The localizer is optional and only used by the loc template function.
func New(conf *config.Config, loc *spreak.Localizer) (*Presenter, error) {
	p := &Presenter{localizer: loc}

	text := conf.Templates.Reply
	if text == "" {
		text = config.DefaultReplyTpl
	}
	tpl, err := template.New("reply").Funcs(p.templateFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse reply template: %w", err)
	}
	p.reply = tpl

	return p, nil
}

// Render formats the weather record. The output depends only on the record.
func (p *Presenter) Render(record *weather.Record) (string, error) {
	if record == nil {
		return "", ErrNilRecord
	}
	buf := bytes.NewBuffer(nil)
	if err := p.reply.Execute(buf, record); err != nil {
		return "", fmt.Errorf("failed to render reply template: %w", err)
	}
	return buf.String(), nil
}
