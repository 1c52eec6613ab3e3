// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package opencage

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
	APIEndpoint = "https://api.opencagedata.com/geocode/v1/json"
	APITimeout  = time.Second * 10
	name        = "opencage"
)

type OpenCage struct {
	apikey string
	http   *http.Client
	lang   language.Tag
}

type Response struct {
	Results      []Result `json:"results"`
	Status       Status   `json:"status"`
	TotalResults int      `json:"total_results"`
}

type Status struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Result struct {
	Confidence  int       `json:"confidence"`
	DisplayName string    `json:"formatted"`
	Geometry    *Geometry `json:"geometry"`
}

type Geometry struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lng"`
}

func New(client *http.Client, lang language.Tag, apikey string) *OpenCage {
	return &OpenCage{
		apikey: apikey,
		lang:   lang,
		http:   client,
	}
}

func (o *OpenCage) Name() string {
	return name
}

func (o *OpenCage) Search(ctx context.Context, query string) (geocode.Coordinate, error) {
	if strings.TrimSpace(query) == "" {
		return geocode.Coordinate{}, geocode.ErrEmptyQuery
	}
	var response Response

	params := url.Values{}
	params.Set("key", o.apikey)
	params.Set("q", query)
	params.Set("limit", "1")
	params.Set("no_annotations", "1")
	params.Set("no_record", "1")
	params.Set("language", o.lang.String())

	code, err := o.http.GetWithTimeout(ctx, APIEndpoint, &response, params, nil, APITimeout)
	if err != nil {
		return geocode.Coordinate{}, fmt.Errorf("failed to retrieve coordinates from OpenCage API: %w", err)
	}
	if code != 200 {
		return geocode.Coordinate{}, fmt.Errorf("%w: %d", geocode.ErrUnexpectedStatus, code)
	}
	if len(response.Results) < 1 {
		return geocode.Coordinate{}, fmt.Errorf("%w: %q", geocode.ErrNoResults, query)
	}

	geometry := response.Results[0].Geometry
	if geometry == nil {
		return geocode.Coordinate{}, fmt.Errorf("%w: %q", geocode.ErrMalformedResponse, query)
	}
	coords := geocode.Coordinate{
		Lat:   geometry.Lat,
		Lon:   geometry.Lon,
		Found: true,
	}
	if !coords.Valid() {
		return geocode.Coordinate{}, fmt.Errorf("%w: %f,%f", geocode.ErrInvalidCoordinate, coords.Lat, coords.Lon)
	}

	return coords, nil
}
