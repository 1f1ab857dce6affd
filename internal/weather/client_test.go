package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// mockRoundTripper is a custom RoundTripper for testing
type mockRoundTripper struct {
	handler http.Handler
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	rec := httptest.NewRecorder()
	m.handler.ServeHTTP(rec, req)
	resp := rec.Result()
	return resp, nil
}

func newTestClient(handler http.HandlerFunc) *Client {
	return &Client{
		URLs: NewURLBuilder("test-key"),
		HTTPClient: &http.Client{
			Transport: &mockRoundTripper{handler: handler},
		},
	}
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

const currentWeatherJSON = `{
	"weather": [{"id": 800, "main": "Clear", "description": "céu limpo", "icon": "01d"}],
	"main": {"temp": 23.7, "feels_like": 22.1, "pressure": 1014, "humidity": 61},
	"visibility": 8000,
	"dt": 1700000000,
	"sys": {"sunrise": 1699950000, "sunset": 1699996000},
	"timezone": -10800
}`

func TestURLBuilder(t *testing.T) {
	b := NewURLBuilder("k")
	c := Coordinate{Lat: -23.55, Lon: -46.6333}

	tests := []struct {
		name     string
		url      string
		prefix   string
		contains []string
	}{
		{"current", b.CurrentWeather(c), DefaultBaseURL + "/weather?", []string{"lat=-23.55", "lon=-46.6333", "units=metric", "lang=pt_br", "appid=k"}},
		{"forecast", b.Forecast(c), DefaultBaseURL + "/forecast?", []string{"lat=-23.55", "units=metric"}},
		{"air pollution", b.AirPollution(c), DefaultBaseURL + "/air_pollution?", []string{"lat=-23.55", "lon=-46.6333", "appid=k"}},
		{"reverse geo", b.ReverseGeo(c), DefaultGeoBaseURL + "/reverse?", []string{"lat=-23.55", "limit=5"}},
		{"geo", b.Geo("São Paulo"), DefaultGeoBaseURL + "/direct?", []string{"q=S%C3%A3o+Paulo", "limit=5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.HasPrefix(tt.url, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, tt.url)
			}
			for _, s := range tt.contains {
				if !strings.Contains(tt.url, s) {
					t.Errorf("expected %q to contain %q", tt.url, s)
				}
			}
		})
	}
}

func TestCurrentWeather_Success(t *testing.T) {
	client := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/2.5/weather" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("lat") != "-23.55" {
			t.Errorf("expected lat=-23.55, got %s", r.URL.Query().Get("lat"))
		}
		jsonHandler(http.StatusOK, currentWeatherJSON)(w, r)
	})

	cw, err := client.CurrentWeather(context.Background(), Coordinate{Lat: -23.55, Lon: -46.63})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cw.Main.Temp != 23.7 {
		t.Errorf("expected temp 23.7, got %v", cw.Main.Temp)
	}
	if cw.Weather[0].Icon != "01d" {
		t.Errorf("expected icon 01d, got %q", cw.Weather[0].Icon)
	}
	if cw.Timezone != -10800 {
		t.Errorf("expected timezone -10800, got %d", cw.Timezone)
	}
}

func TestCurrentWeather_APIError(t *testing.T) {
	client := newTestClient(jsonHandler(http.StatusUnauthorized, `{"cod":401,"message":"Invalid API key"}`))

	_, err := client.CurrentWeather(context.Background(), Coordinate{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", apiErr.StatusCode)
	}
}

func TestCurrentWeather_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty weather array", `{"weather": [], "main": {"pressure": 1000}, "dt": 1}`},
		{"missing icon", `{"weather": [{"description": "nublado"}], "main": {"pressure": 1000}, "dt": 1}`},
		{"missing dt", `{"weather": [{"description": "nublado", "icon": "04d"}], "main": {"pressure": 1000}}`},
		{"not json", `<html>bad gateway</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(jsonHandler(http.StatusOK, tt.body))
			_, err := client.CurrentWeather(context.Background(), Coordinate{})
			if !errors.Is(err, ErrInvalidPayload) {
				t.Errorf("expected ErrInvalidPayload, got %v", err)
			}
		})
	}
}

func TestAirPollution_Success(t *testing.T) {
	body := `{"list": [{"main": {"aqi": 2}, "components": {"no2": 10.5, "o3": 60.1, "so2": 1.2, "pm2_5": 4.4}, "dt": 1700000000}]}`
	client := newTestClient(jsonHandler(http.StatusOK, body))

	ap, err := client.AirPollution(context.Background(), Coordinate{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ap.List[0].Main.AQI != 2 {
		t.Errorf("expected aqi 2, got %d", ap.List[0].Main.AQI)
	}
	if ap.List[0].Components.PM25 != 4.4 {
		t.Errorf("expected pm2_5 4.4, got %v", ap.List[0].Components.PM25)
	}
}

func TestAirPollution_EmptyList(t *testing.T) {
	client := newTestClient(jsonHandler(http.StatusOK, `{"list": []}`))

	_, err := client.AirPollution(context.Background(), Coordinate{})
	if !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestForecast_Success(t *testing.T) {
	body := `{
		"list": [{"dt": 1700010800, "main": {"temp": 20.4, "temp_max": 21.9},
			"weather": [{"description": "chuva leve", "icon": "10n"}],
			"wind": {"speed": 5.0, "deg": 135}, "dt_txt": "2023-11-15 03:00:00"}],
		"city": {"name": "São Paulo", "country": "BR", "timezone": -10800}
	}`
	client := newTestClient(jsonHandler(http.StatusOK, body))

	fc, err := client.Forecast(context.Background(), Coordinate{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fc.List) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(fc.List))
	}
	if fc.List[0].Wind.Deg != 135 {
		t.Errorf("expected wind deg 135, got %d", fc.List[0].Wind.Deg)
	}
	if fc.City.Timezone != -10800 {
		t.Errorf("expected timezone -10800, got %d", fc.City.Timezone)
	}
}

func TestReverseGeocode(t *testing.T) {
	client := newTestClient(jsonHandler(http.StatusOK, `[{"name": "São Paulo", "lat": -23.55, "lon": -46.63, "country": "BR", "state": "São Paulo"}]`))

	places, err := client.ReverseGeocode(context.Background(), Coordinate{Lat: -23.55, Lon: -46.63})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if places[0].Name != "São Paulo" || places[0].Country != "BR" {
		t.Errorf("unexpected place %+v", places[0])
	}
}

func TestReverseGeocode_NoResults(t *testing.T) {
	client := newTestClient(jsonHandler(http.StatusOK, `[]`))

	_, err := client.ReverseGeocode(context.Background(), Coordinate{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGeocode_EmptyIsNotAnError(t *testing.T) {
	client := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "xyz123notfound" {
			t.Errorf("expected q=xyz123notfound, got %s", r.URL.Query().Get("q"))
		}
		jsonHandler(http.StatusOK, `[]`)(w, r)
	})

	places, err := client.Geocode(context.Background(), "xyz123notfound")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(places) != 0 {
		t.Errorf("expected no places, got %d", len(places))
	}
}

func TestFetch_ContextCancelled(t *testing.T) {
	client := newTestClient(jsonHandler(http.StatusOK, currentWeatherJSON))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.CurrentWeather(ctx, Coordinate{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
