// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package google

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/tenki/internal/geocode"
	"github.com/wneessen/tenki/internal/http"
)

const (
	APIEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"
	APITimeout  = time.Second * 10
	name        = "google"

	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

type Google struct {
	apikey string
	http   *http.Client
	lang   language.Tag
}

type Response struct {
	Results      []Result `json:"results"`
	Status       string   `json:"status"`
	ErrorMessage string   `json:"error_message"`
}

type Result struct {
	FormattedAddress string    `json:"formatted_address"`
	Geometry         *Geometry `json:"geometry"`
}

type Geometry struct {
	Location *Location `json:"location"`
}

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func New(client *http.Client, lang language.Tag, apikey string) *Google {
	return &Google{
		apikey: apikey,
		lang:   lang,
		http:   client,
	}
}

func (g *Google) Name() string {
	return name
}

// Search resolves the query with the Google Geocoding API and returns the location of the
// first result.
func (g *Google) Search(ctx context.Context, query string) (geocode.Coordinate, error) {
	if strings.TrimSpace(query) == "" {
		return geocode.Coordinate{}, geocode.ErrEmptyQuery
	}
	var response Response

	params := url.Values{}
	params.Set("address", query)
	params.Set("key", g.apikey)
	if g.lang != language.Und {
		params.Set("language", g.lang.String())
	}

	code, err := g.http.GetWithTimeout(ctx, APIEndpoint, &response, params, nil, APITimeout)
	if err != nil {
		return geocode.Coordinate{}, fmt.Errorf("failed to retrieve coordinates from Google Geocoding API: %w", err)
	}
	if code != 200 {
		return geocode.Coordinate{}, fmt.Errorf("%w: %d", geocode.ErrUnexpectedStatus, code)
	}
	switch response.Status {
	case "", statusOK, statusZeroResults:
	default:
		return geocode.Coordinate{}, fmt.Errorf("Google Geocoding API returned status %s: %s", response.Status,
			response.ErrorMessage)
	}
	if len(response.Results) == 0 {
		return geocode.Coordinate{}, fmt.Errorf("%w: %q", geocode.ErrNoResults, query)
	}

	geometry := response.Results[0].Geometry
	if geometry == nil || geometry.Location == nil {
		return geocode.Coordinate{}, fmt.Errorf("%w: %q", geocode.ErrMalformedResponse, query)
	}
	location := geometry.Location
	coords := geocode.Coordinate{Lat: location.Lat, Lon: location.Lng, Found: true}
	if !coords.Valid() {
		return geocode.Coordinate{}, fmt.Errorf("%w: %f,%f", geocode.ErrInvalidCoordinate, coords.Lat, coords.Lon)
	}
	return coords, nil
}
