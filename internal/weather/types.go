package weather

// Coordinate identifies a location for one render cycle.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Condition is one entry of the OpenWeatherMap "weather" array
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description" validate:"required"`
	Icon        string `json:"icon" validate:"required"`
}

// CurrentWeather represents the /data/2.5/weather response
type CurrentWeather struct {
	Weather []Condition `json:"weather" validate:"required,min=1,dive"`
	Main    struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Pressure  int     `json:"pressure" validate:"required"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Visibility int   `json:"visibility"`
	Dt         int64 `json:"dt" validate:"required"`
	Sys        struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
	Timezone int `json:"timezone"`
}

// AirPollutionSample is one element of the air pollution list
type AirPollutionSample struct {
	Main struct {
		AQI int `json:"aqi" validate:"required"`
	} `json:"main"`
	Components struct {
		NO2  float64 `json:"no2"`
		O3   float64 `json:"o3"`
		SO2  float64 `json:"so2"`
		PM25 float64 `json:"pm2_5"`
	} `json:"components"`
	Dt int64 `json:"dt"`
}

// AirPollution represents the /data/2.5/air_pollution response
type AirPollution struct {
	List []AirPollutionSample `json:"list" validate:"required,min=1,dive"`
}

// ForecastEntry is one 3-hour step of the 5 day forecast
type ForecastEntry struct {
	Dt   int64 `json:"dt" validate:"required"`
	Main struct {
		Temp    float64 `json:"temp"`
		TempMax float64 `json:"temp_max"`
	} `json:"main"`
	Weather []Condition `json:"weather" validate:"required,min=1,dive"`
	Wind    struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	DtTxt string `json:"dt_txt"`
}

// Forecast represents the /data/2.5/forecast response
type Forecast struct {
	List []ForecastEntry `json:"list" validate:"required,min=1,dive"`
	City struct {
		Name     string `json:"name"`
		Country  string `json:"country"`
		Timezone int    `json:"timezone"`
	} `json:"city"`
}

// Place is a geocoding result, from the remote API or the local gazetteer
type Place struct {
	Name    string  `json:"name" validate:"required"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state,omitempty"`
}

// Coordinate returns the place location
func (p Place) Coordinate() Coordinate {
	return Coordinate{Lat: p.Lat, Lon: p.Lon}
}
