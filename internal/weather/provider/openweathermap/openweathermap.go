// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package openweathermap

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/wneessen/tenki/internal/geocode"
	"github.com/wneessen/tenki/internal/http"
	"github.com/wneessen/tenki/internal/weather"
)

const (
	APIEndpoint = "https://api.openweathermap.org/data/2.5/weather"
	APITimeout  = time.Second * 10
	name        = "openweathermap"
)

type OpenWeatherMap struct {
	apikey string
	http   *http.Client
}

type Response struct {
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main *struct {
		Temp     float64 `json:"temp"`
		TempMin  float64 `json:"temp_min"`
		TempMax  float64 `json:"temp_max"`
		Pressure float64 `json:"pressure"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Clouds *struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Rain *struct {
		OneHour   float64 `json:"1h"`
		ThreeHour float64 `json:"3h"`
	} `json:"rain,omitempty"`
	Name string `json:"name"`
}

func New(client *http.Client, apikey string) *OpenWeatherMap {
	return &OpenWeatherMap{
		apikey: apikey,
		http:   client,
	}
}

func (o *OpenWeatherMap) Name() string {
	return name
}

func (o *OpenWeatherMap) GetWeather(ctx context.Context, coords geocode.Coordinate) (*weather.Record, error) {
	if !coords.Valid() {
		return nil, fmt.Errorf("%w: %f,%f", weather.ErrInvalidCoordinate, coords.Lat, coords.Lon)
	}
	var res Response

	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(coords.Lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(coords.Lon, 'f', -1, 64))
	query.Set("units", "metric")
	query.Set("appid", o.apikey)

	code, err := o.http.GetWithTimeout(ctx, APIEndpoint, &res, query, nil, APITimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve weather data from OpenWeatherMap API: %w", err)
	}
	if code != 200 {
		return nil, fmt.Errorf("%w: %d", weather.ErrUnexpectedStatus, code)
	}

	if res.Main == nil {
		return nil, fmt.Errorf("%w: no main section in OpenWeatherMap response", weather.ErrMalformedResponse)
	}

	record := &weather.Record{
		Conditions:     make([]weather.Condition, 0, len(res.Weather)),
		Temperature:    res.Main.Temp,
		TemperatureMin: res.Main.TempMin,
		TemperatureMax: res.Main.TempMax,
		Humidity:       res.Main.Humidity,
		Pressure:       res.Main.Pressure,
	}
	if res.Clouds != nil {
		record.CloudCoverage = res.Clouds.All
	}
	for _, cond := range res.Weather {
		record.Conditions = append(record.Conditions, weather.Condition{Description: cond.Description})
	}
	if res.Rain != nil {
		record.Precipitation3h = res.Rain.ThreeHour
	}

	return record, nil
}
