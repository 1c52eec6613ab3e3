// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package nominatim

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/tenki/internal/geocode"
	"github.com/wneessen/tenki/internal/http"
)

const (
	APISearchEndpoint = "https://nominatim.openstreetmap.org/search"
	APITimeout        = time.Second * 10
	name              = "osm-nominatim"
)

type Nominatim struct {
	http *http.Client
	lang language.Tag
}

type SearchResult struct {
	APILat      string `json:"lat"`
	APILon      string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func New(client *http.Client, lang language.Tag) *Nominatim {
	return &Nominatim{
		lang: lang,
		http: client,
	}
}

func (n *Nominatim) Name() string {
	return name
}

func (n *Nominatim) Search(ctx context.Context, query string) (geocode.Coordinate, error) {
	if strings.TrimSpace(query) == "" {
		return geocode.Coordinate{}, geocode.ErrEmptyQuery
	}
	var result []SearchResult
	var err error

	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("limit", "1")
	params.Set("q", query)
	params.Set("accept-language", n.lang.String())

	code, err := n.http.GetWithTimeout(ctx, APISearchEndpoint, &result, params, nil, APITimeout)
	if err != nil {
		return geocode.Coordinate{}, fmt.Errorf("failed to fetch address details from Nominatim API: %w", err)
	}
	if code != 200 {
		return geocode.Coordinate{}, fmt.Errorf("%w: %d", geocode.ErrUnexpectedStatus, code)
	}

	// Fill the geocode.Coordinate struct
	if len(result) < 1 {
		return geocode.Coordinate{}, fmt.Errorf("%w: %q", geocode.ErrNoResults, query)
	}
	coords := geocode.Coordinate{Found: true}
	coords.Lat, err = strconv.ParseFloat(result[0].APILat, 64)
	if err != nil {
		return geocode.Coordinate{}, fmt.Errorf("failed to parse latitude from Nominatim API response: %w", err)
	}
	coords.Lon, err = strconv.ParseFloat(result[0].APILon, 64)
	if err != nil {
		return geocode.Coordinate{}, fmt.Errorf("failed to parse longitude from Nominatim API response: %w", err)
	}
	if !coords.Valid() {
		return geocode.Coordinate{}, fmt.Errorf("%w: %f,%f", geocode.ErrInvalidCoordinate, coords.Lat, coords.Lon)
	}

	return coords, nil
}
