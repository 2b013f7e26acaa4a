// Package geocode annotates geodetic positions with the nearest named place
// using the Nominatim reverse geocoding API.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the public Nominatim instance.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// Result is a reverse geocoding outcome. Place is empty when the position
// has no nearby named place (open ocean, most of the time, for the ISS).
type Result struct {
	Place string
}

// Geocoder converts coordinates to a place description.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (Result, error)
}

// Client implements Geocoder against the Nominatim API. Nominatim's usage
// policy requires an identifying User-Agent on every request.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Nominatim client. An empty baseURL selects the public
// instance.
func NewClient(baseURL, userAgent string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = "iss-tracker"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		City         string `json:"city"`
		Municipality string `json:"municipality"`
		Country      string `json:"country"`
	} `json:"address"`
	Error string `json:"error"`
}

// Reverse looks up the place nearest to (lat, lon). A position Nominatim
// cannot resolve (e.g. open ocean) yields an empty Result, not an error.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (Result, error) {
	params := url.Values{
		"format":          {"jsonv2"},
		"lat":             {fmt.Sprintf("%.6f", lat)},
		"lon":             {fmt.Sprintf("%.6f", lon)},
		"zoom":            {"10"},
		"accept-language": {"en"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+params.Encode(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("reverse geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, fmt.Errorf("reverse geocode status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var nr nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&nr); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}

	// "Unable to geocode" comes back as a 200 with an error field.
	if nr.Error != "" {
		return Result{}, nil
	}

	place := nr.DisplayName
	if place == "" {
		var parts []string
		for _, p := range []string{nr.Address.City, nr.Address.Municipality, nr.Address.Country} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		place = strings.Join(parts, ", ")
	}

	return Result{Place: place}, nil
}
