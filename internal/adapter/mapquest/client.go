package mapquest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/geotag/internal/domain"
	"github.com/couchcryptid/geotag/internal/observability"
	"github.com/tidwall/gjson"
)

// DefaultBaseURL is the MapQuest Geocoding API v1 reverse endpoint.
const DefaultBaseURL = "https://www.mapquestapi.com/geocoding/v1/reverse"

// maxErrorBody bounds how much of a failed response is echoed into errors.
const maxErrorBody = 512

// ErrNoLocation is returned when MapQuest answers without any location.
var ErrNoLocation = errors.New("mapquest: no location in response")

// Client implements domain.ReverseGeocoder using the MapQuest Geocoding API.
type Client struct {
	key        string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a MapQuest reverse geocoding client. An empty baseURL
// uses DefaultBaseURL.
func NewClient(key, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		key: key,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// ReverseGeocode converts coordinates to country, city, street and postal
// code.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodeResult, error) {
	params := url.Values{
		"key":       {c.key},
		"location":  {fmt.Sprintf("%.6f,%.6f", lat, lon)},
		"outFormat": {"json"},
		"thumbMaps": {"false"},
	}

	start := time.Now()
	body, err := c.doRequest(ctx, c.baseURL+"?"+params.Encode())
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.GeocodeResult{}, err
	}

	result, err := parseReverse(body)
	switch {
	case errors.Is(err, ErrNoLocation):
		c.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
	case err != nil:
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
	default:
		c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
		c.logger.Debug("reverse geocoded", "lat", lat, "lon", lon, "city", result.City)
	}
	return result, err
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reverse geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("mapquest API error: status %d: %s", resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// parseReverse extracts the first location of the first result:
//
//	{"info":{"statuscode":0},"results":[{"locations":[{"adminArea1":"US", ...}]}]}
func parseReverse(body []byte) (domain.GeocodeResult, error) {
	if !gjson.ValidBytes(body) {
		return domain.GeocodeResult{}, errors.New("decode response: invalid JSON")
	}
	if code := gjson.GetBytes(body, "info.statuscode"); code.Exists() && code.Int() != 0 {
		msg := gjson.GetBytes(body, "info.messages.0").String()
		return domain.GeocodeResult{}, fmt.Errorf("mapquest API error: statuscode %d: %s", code.Int(), msg)
	}

	loc := gjson.GetBytes(body, "results.0.locations.0")
	if !loc.Exists() {
		return domain.GeocodeResult{}, ErrNoLocation
	}
	return domain.GeocodeResult{
		Country:    loc.Get("adminArea1").String(),
		City:       loc.Get("adminArea5").String(),
		Street:     loc.Get("street").String(),
		PostalCode: loc.Get("postalCode").String(),
	}, nil
}
