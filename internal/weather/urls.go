package weather

import (
	"net/url"
	"strconv"
)

const (
	DefaultBaseURL    = "https://api.openweathermap.org/data/2.5"
	DefaultGeoBaseURL = "https://api.openweathermap.org/geo/1.0"
)

// URLBuilder produces OpenWeatherMap endpoint URLs
type URLBuilder struct {
	BaseURL    string
	GeoBaseURL string
	APIKey     string
	Units      string
	Lang       string
}

// NewURLBuilder returns a builder for metric units and Brazilian Portuguese descriptions
func NewURLBuilder(apiKey string) URLBuilder {
	return URLBuilder{
		BaseURL:    DefaultBaseURL,
		GeoBaseURL: DefaultGeoBaseURL,
		APIKey:     apiKey,
		Units:      "metric",
		Lang:       "pt_br",
	}
}

// CurrentWeather returns the current conditions URL for c
func (b URLBuilder) CurrentWeather(c Coordinate) string {
	return b.data("/weather", c)
}

// Forecast returns the 5 day / 3 hour forecast URL for c
func (b URLBuilder) Forecast(c Coordinate) string {
	return b.data("/forecast", c)
}

// AirPollution returns the air pollution URL for c
func (b URLBuilder) AirPollution(c Coordinate) string {
	params := b.coordParams(c)
	params.Set("appid", b.APIKey)
	return b.BaseURL + "/air_pollution?" + params.Encode()
}

// ReverseGeo returns the reverse geocoding URL for c
func (b URLBuilder) ReverseGeo(c Coordinate) string {
	params := b.coordParams(c)
	params.Set("limit", "5")
	params.Set("appid", b.APIKey)
	return b.GeoBaseURL + "/reverse?" + params.Encode()
}

// Geo returns the forward geocoding URL for a free text query
func (b URLBuilder) Geo(query string) string {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", "5")
	params.Set("appid", b.APIKey)
	return b.GeoBaseURL + "/direct?" + params.Encode()
}

func (b URLBuilder) data(path string, c Coordinate) string {
	params := b.coordParams(c)
	if b.Units != "" {
		params.Set("units", b.Units)
	}
	if b.Lang != "" {
		params.Set("lang", b.Lang)
	}
	params.Set("appid", b.APIKey)
	return b.BaseURL + path + "?" + params.Encode()
}

func (b URLBuilder) coordParams(c Coordinate) url.Values {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(c.Lon, 'f', -1, 64))
	return params
}
