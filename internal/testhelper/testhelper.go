// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package testhelper

import (
	"bytes"
	"io"
	stdhttp "net/http"
	"os"
	"strings"
	"testing"
)

// TestOnlineAPIURL is a reachable endpoint used by opt-in integration tests.
const TestOnlineAPIURL = "https://httpbin.org/get"

// MockRoundTripper is a http.RoundTripper that hands every request to Fn.
type MockRoundTripper struct {
	Fn func(req *stdhttp.Request) (*stdhttp.Response, error)
}

func (m MockRoundTripper) RoundTrip(req *stdhttp.Request) (*stdhttp.Response, error) {
	return m.Fn(req)
}

// JSONResponse returns a RoundTripper function that always answers with the given status
// and body.
func JSONResponse(status int, body string) func(*stdhttp.Request) (*stdhttp.Response, error) {
	return func(*stdhttp.Request) (*stdhttp.Response, error) {
		return &stdhttp.Response{
			StatusCode: status,
			Body:       io.NopCloser(bytes.NewBufferString(body)),
			Header:     make(stdhttp.Header),
		}, nil
	}
}

// FileResponse returns a RoundTripper function that answers with the content of the given
// fixture file.
func FileResponse(t *testing.T, status int, file string) func(*stdhttp.Request) (*stdhttp.Response, error) {
	t.Helper()
	return func(*stdhttp.Request) (*stdhttp.Response, error) {
		data, err := os.Open(file)
		if err != nil {
			t.Fatalf("failed to open JSON response file: %s", err)
		}
		return &stdhttp.Response{
			StatusCode: status,
			Body:       data,
			Header:     make(stdhttp.Header),
		}, nil
	}
}

// PerformIntegrationTests skips the test unless PERFORM_INTEGRATION_TEST is set to true.
func PerformIntegrationTests(t *testing.T) {
	t.Helper()
	if val := os.Getenv("PERFORM_INTEGRATION_TEST"); !strings.EqualFold(val, "true") {
		t.Skip("skipping integration test")
	}
}
