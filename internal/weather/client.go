package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	// ErrInvalidPayload is returned when a response decodes but lacks fields the dashboard renders
	ErrInvalidPayload = errors.New("invalid payload")
	// ErrNotFound is returned when the reverse geocoder knows no place for a coordinate
	ErrNotFound = errors.New("location not found")
)

// APIError is a non-200 answer from OpenWeatherMap
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openweathermap API error: %d %s", e.StatusCode, e.Body)
}

var validate = validator.New()

// Client handles OpenWeatherMap API interactions
type Client struct {
	HTTPClient *http.Client
	URLs       URLBuilder
}

// NewClient creates a new OpenWeatherMap client with a traced transport
func NewClient(urls URLBuilder, timeout time.Duration) *Client {
	return &Client{
		URLs: urls,
		HTTPClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// fetch GETs url and decodes the JSON body into out
func (c *Client) fetch(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return nil
}

// CurrentWeather fetches current conditions for c
func (c *Client) CurrentWeather(ctx context.Context, coord Coordinate) (*CurrentWeather, error) {
	var cw CurrentWeather
	if err := c.fetch(ctx, c.URLs.CurrentWeather(coord), &cw); err != nil {
		return nil, fmt.Errorf("current weather: %w", err)
	}
	if err := validate.Struct(cw); err != nil {
		return nil, fmt.Errorf("current weather: %w: %w", ErrInvalidPayload, err)
	}
	return &cw, nil
}

// Forecast fetches the 5 day / 3 hour forecast for c
func (c *Client) Forecast(ctx context.Context, coord Coordinate) (*Forecast, error) {
	var fc Forecast
	if err := c.fetch(ctx, c.URLs.Forecast(coord), &fc); err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}
	if err := validate.Struct(fc); err != nil {
		return nil, fmt.Errorf("forecast: %w: %w", ErrInvalidPayload, err)
	}
	return &fc, nil
}

// AirPollution fetches the air pollution sample for c
func (c *Client) AirPollution(ctx context.Context, coord Coordinate) (*AirPollution, error) {
	var ap AirPollution
	if err := c.fetch(ctx, c.URLs.AirPollution(coord), &ap); err != nil {
		return nil, fmt.Errorf("air pollution: %w", err)
	}
	if err := validate.Struct(ap); err != nil {
		return nil, fmt.Errorf("air pollution: %w: %w", ErrInvalidPayload, err)
	}
	return &ap, nil
}

// ReverseGeocode fetches the places near c, closest first
func (c *Client) ReverseGeocode(ctx context.Context, coord Coordinate) ([]Place, error) {
	places, err := c.places(ctx, c.URLs.ReverseGeo(coord))
	if err != nil {
		return nil, fmt.Errorf("reverse geocode: %w", err)
	}
	if len(places) == 0 {
		return nil, fmt.Errorf("reverse geocode: %w", ErrNotFound)
	}
	return places, nil
}

// Geocode searches places by name. An empty result is not an error.
func (c *Client) Geocode(ctx context.Context, query string) ([]Place, error) {
	places, err := c.places(ctx, c.URLs.Geo(query))
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", query, err)
	}
	return places, nil
}

func (c *Client) places(ctx context.Context, url string) ([]Place, error) {
	var places []Place
	if err := c.fetch(ctx, url, &places); err != nil {
		return nil, err
	}
	for i := range places {
		if err := validate.Struct(places[i]); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
	}
	return places, nil
}
