// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package openmeteo

import (
	"context"
	"fmt"
	"time"

	"github.com/hectormalot/omgo"

	"github.com/wneessen/tenki/internal/geocode"
	"github.com/wneessen/tenki/internal/weather"
)

const (
	name       = "open-meteo"
	apiTimeout = time.Second * 10
)

const (
	metricHumidity      = "relative_humidity_2m"
	metricPressure      = "pressure_msl"
	metricCloudCover    = "cloud_cover"
	metricPrecipitation = "precipitation"
	metricTempMin       = "temperature_2m_min"
	metricTempMax       = "temperature_2m_max"
)

// precipitationHours is the number of hourly values summed up for the precipitation amount
const precipitationHours = 3

// wmoDescriptions translates WMO weather interpretation codes into the condition
// descriptions used by OpenWeatherMap, so both providers share one icon table.
var wmoDescriptions = map[int]string{
	0:  "clear sky",
	1:  "few clouds",
	2:  "scattered clouds",
	3:  "broken clouds",
	45: "mist",
	48: "mist",
	51: "shower rain",
	53: "shower rain",
	55: "shower rain",
	56: "shower rain",
	57: "shower rain",
	61: "rain",
	63: "rain",
	65: "rain",
	66: "rain",
	67: "rain",
	71: "snow",
	73: "snow",
	75: "snow",
	77: "snow",
	80: "shower rain",
	81: "shower rain",
	82: "shower rain",
	85: "snow",
	86: "snow",
	95: "thunderstorm",
	96: "thunderstorm",
	99: "thunderstorm",
}

type OpenMeteo struct {
	client omgo.Client
}

func New() (*OpenMeteo, error) {
	client, err := omgo.NewClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create Open-Meteo client: %w", err)
	}
	return &OpenMeteo{client: client}, nil
}

// NewWithClient returns an OpenMeteo provider that uses the given omgo client.
func NewWithClient(client omgo.Client) *OpenMeteo {
	return &OpenMeteo{client: client}
}

func (o *OpenMeteo) Name() string {
	return name
}

func (o *OpenMeteo) GetWeather(ctx context.Context, coords geocode.Coordinate) (*weather.Record, error) {
	location, err := omgo.NewLocation(coords.Lat, coords.Lon)
	if err != nil || !coords.Valid() {
		return nil, fmt.Errorf("%w: %f,%f", weather.ErrInvalidCoordinate, coords.Lat, coords.Lon)
	}

	ctxFetch, cancelFetch := context.WithTimeout(ctx, apiTimeout)
	defer cancelFetch()

	opts := &omgo.Options{
		Timezone:          "auto",
		TemperatureUnit:   "celsius",
		PrecipitationUnit: "mm",
		WindspeedUnit:     "kmh",
		HourlyMetrics:     []string{metricHumidity, metricPressure, metricCloudCover, metricPrecipitation},
		DailyMetrics:      []string{metricTempMin, metricTempMax},
	}
	forecast, err := o.client.Forecast(ctxFetch, location, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve weather data from Open-Meteo API: %w", err)
	}
	if forecast == nil {
		return nil, fmt.Errorf("Open-Meteo API returned an empty forecast")
	}

	current := forecast.CurrentWeather
	record := &weather.Record{
		Conditions:     []weather.Condition{{Description: Description(int(current.WeatherCode))}},
		Temperature:    current.Temperature,
		TemperatureMin: metricAt(forecast.DailyMetrics, metricTempMin, 0),
		TemperatureMax: metricAt(forecast.DailyMetrics, metricTempMax, 0),
	}

	idx := hourIndex(forecast.HourlyTimes, current.Time.Time)
	record.Humidity = metricAt(forecast.HourlyMetrics, metricHumidity, idx)
	record.Pressure = metricAt(forecast.HourlyMetrics, metricPressure, idx)
	record.CloudCoverage = metricAt(forecast.HourlyMetrics, metricCloudCover, idx)
	for i := max(0, idx-precipitationHours+1); i <= idx; i++ {
		record.Precipitation3h += metricAt(forecast.HourlyMetrics, metricPrecipitation, i)
	}

	return record, nil
}

// Description returns the OpenWeatherMap condition description for a WMO weather code.
func Description(code int) string {
	if desc, ok := wmoDescriptions[code]; ok {
		return desc
	}
	return "unknown"
}

// hourIndex returns the index of the last hourly value not after now.
func hourIndex(times []time.Time, now time.Time) int {
	idx := 0
	for i, t := range times {
		if t.After(now) {
			break
		}
		idx = i
	}
	return idx
}

func metricAt(metrics map[string][]float64, metric string, idx int) float64 {
	values, ok := metrics[metric]
	if !ok || idx < 0 || idx >= len(values) {
		return 0
	}
	return values[idx]
}
