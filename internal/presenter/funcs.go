// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"fmt"
	"math"
	"strings"
	"text/template"

	"github.com/wneessen/tenki/internal/weather"
)

func (p *Presenter) templateFuncMap() template.FuncMap {
	return template.FuncMap{
		"icons":       icons,
		"icon":        IconFor,
		"floatFormat": floatFormat,
		"loc":         p.loc,
		"lc":          strings.ToLower,
		"uc":          strings.ToUpper,
	}
}

// icons concatenates the glyphs of all conditions without separator.
func icons(conds []weather.Condition) string {
	var sb strings.Builder
	for _, cond := range conds {
		sb.WriteString(IconFor(cond.Description))
	}
	return sb.String()
}

func (p *Presenter) loc(val string) string {
	if p.localizer == nil {
		return val
	}
	if raw, ok := ConditionNames[strings.ToLower(val)]; ok {
		return p.localizer.Get(raw)
	}
	return val
}

func floatFormat(val float64, precision int) string {
	pow := math.Pow(10, float64(precision))
	return fmt.Sprintf("%.*f", precision, math.Trunc(val*pow)/pow)
}
