/*
Package sevenshifts is the REST client for the 7shifts scheduling API.

PURPOSE:
  Fetches time punches, scheduled shifts, and user details from 7shifts and
  converts them into the labor package's input types. This is the collaborator
  layer in front of the labor engine: it owns HTTP transport, auth headers and
  cursor pagination; the engine never sees a network.

ERROR POLICY:
  A non-2xx response is a fatal error for that fetch, surfaced with status and
  body. No retries here. Individual malformed rows are skipped rather than
  failing the whole fetch; user-detail lookups degrade to a placeholder.

SEE ALSO:
  - punches.go: Time punch fetch (cursor pagination)
  - shifts.go:  Scheduled shift fetch (week window)
  - users.go:   User detail lookup
*/
package sevenshifts

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// DefaultBaseURL is the production 7shifts API host.
const DefaultBaseURL = "https://api.7shifts.com/v2"

// apiVersion is pinned so schedule payload shapes don't move under us.
const apiVersion = "2025-03-01"

// Client talks to the 7shifts API for one company.
type Client struct {
	BaseURL   string
	APIKey    string
	CompanyID string
	HTTP      *http.Client
}

// New creates a client with a tuned transport.
func New(apiKey, companyID string) *Client {
	return &Client{
		BaseURL:   DefaultBaseURL,
		APIKey:    apiKey,
		CompanyID: companyID,
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

// do executes a prepared request, adding auth headers, and returns the body
// reader on 2xx. Non-2xx responses become errors carrying status and body.
func (c *Client) do(req *http.Request) (io.ReadCloser, error) {
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-version", apiVersion)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("7shifts API status=%d, body=%s", resp.StatusCode, string(body))
	}

	return resp.Body, nil
}

// parseInstant accepts the timestamp layouts 7shifts has been seen to emit.
// Returns nil for empty or unparseable values; callers treat nil as missing.
func parseInstant(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
