// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import "github.com/vorlif/spreak/localize"

// DefaultIcon is used for weather conditions without a dedicated glyph.
const DefaultIcon = ":face_with_rolling_eyes:"

// ConditionIcons maps weather condition descriptions to Slack emoji glyph tokens
var ConditionIcons = map[string]string{
	"clear sky":        ":sunny:",
	"few clouds":       ":mostly_sunny:",
	"scattered clouds": ":barely_sunny:",
	"broken clouds":    ":cloud:",
	"shower rain":      ":rain_cloud:",
	"rain":             ":umbrella_with_rain_drops:",
	"thunderstorm":     ":lightning:",
	"snow":             ":snowman_without_snow:",
	"mist":             ":fog:",
}

// ConditionNames maps weather condition descriptions to their translatable names
var ConditionNames = map[string]localize.MsgID{
	"clear sky":        "Clear sky",
	"few clouds":       "Few clouds",
	"scattered clouds": "Scattered clouds",
	"broken clouds":    "Broken clouds",
	"overcast clouds":  "Overcast clouds",
	"shower rain":      "Shower rain",
	"light rain":       "Light rain",
	"moderate rain":    "Moderate rain",
	"rain":             "Rain",
	"thunderstorm":     "Thunderstorm",
	"snow":             "Snow",
	"mist":             "Mist",
	"fog":              "Fog",
}

// IconFor returns the glyph token for a weather condition description. Matching is exact,
// unknown descriptions get the DefaultIcon.
func IconFor(description string) string {
	if icon, ok := ConditionIcons[description]; ok {
		return icon
	}
	return DefaultIcon
}
