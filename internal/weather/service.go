package weather

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// PlaceIndex is a local gazetteer consulted before the remote geocoder
type PlaceIndex interface {
	SearchPlaces(ctx context.Context, query string) ([]Place, error)
}

// Service combines the OpenWeatherMap client with an optional local gazetteer
type Service struct {
	client *Client
	index  PlaceIndex
	log    zerolog.Logger
}

// NewService creates a new weather service. index may be nil.
func NewService(client *Client, index PlaceIndex, log zerolog.Logger) *Service {
	return &Service{
		client: client,
		index:  index,
		log:    log,
	}
}

func (s *Service) CurrentWeather(ctx context.Context, c Coordinate) (*CurrentWeather, error) {
	return s.client.CurrentWeather(ctx, c)
}

func (s *Service) Forecast(ctx context.Context, c Coordinate) (*Forecast, error) {
	return s.client.Forecast(ctx, c)
}

func (s *Service) AirPollution(ctx context.Context, c Coordinate) (*AirPollution, error) {
	return s.client.AirPollution(ctx, c)
}

func (s *Service) ReverseGeocode(ctx context.Context, c Coordinate) ([]Place, error) {
	return s.client.ReverseGeocode(ctx, c)
}

// SearchPlaces resolves a free text query. The local gazetteer answers first
// when it has matches; otherwise the remote geocoding endpoint is used.
func (s *Service) SearchPlaces(ctx context.Context, query string) ([]Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	if s.index != nil {
		places, err := s.index.SearchPlaces(ctx, query)
		if err != nil {
			// Non-fatal: fall through to the remote geocoder
			s.log.Warn().Err(err).Str("query", query).Msg("gazetteer search failed")
		} else if len(places) > 0 {
			return places, nil
		}
	}

	return s.client.Geocode(ctx, query)
}
