package dashboard

import (
	"fmt"

	"github.com/swelljoe/clima/internal/format"
	"github.com/swelljoe/clima/internal/weather"
)

// View is the set of render targets one dashboard writes to. Implementations
// need not be safe for concurrent use; the Coordinator serializes all calls.
type View interface {
	SetLoading(bool)
	SetError(bool)
	SetFadeIn(bool)
	SetCurrentLocationDisabled(bool)
	// Clear empties the current, highlights, hourly and 5 day sections
	Clear()
	RenderCurrent(CurrentCard)
	SetLocationName(string)
	RenderHighlights(Highlights)
	RenderHourly([]HourlyCard, []WindCard)
	RenderForecast([]DayCard)
}

type CurrentCard struct {
	Temperature int
	IconURL     string
	Description string
	Date        string
}

type Highlights struct {
	Humidity     int
	Pressure     int
	VisibilityKm string
	FeelsLike    int
	Sunrise      string
	Sunset       string

	AQI        int
	AQILevel   string
	AQIMessage string
	NO2        float64
	O3         float64
	SO2        float64
	PM25       float64
}

type HourlyCard struct {
	Hour        string
	IconURL     string
	Description string
	Temperature int
}

type WindCard struct {
	Hour      string
	IconURL   string
	Direction int
	SpeedKmh  int
}

type DayCard struct {
	IconURL     string
	Description string
	TempMax     int
	Date        string
}

const (
	hourlyEntries = 8
	entriesPerDay = 8
)

func currentCard(cw *weather.CurrentWeather, iconBase string) (CurrentCard, error) {
	if len(cw.Weather) == 0 {
		return CurrentCard{}, fmt.Errorf("%w: current weather has no conditions", weather.ErrInvalidPayload)
	}
	cond := cw.Weather[0]
	return CurrentCard{
		Temperature: format.Truncate(cw.Main.Temp),
		IconURL:     format.IconURL(iconBase, cond.Icon),
		Description: cond.Description,
		Date:        format.LocalDate(cw.Dt, cw.Timezone),
	}, nil
}

func locationName(places []weather.Place) (string, error) {
	if len(places) == 0 {
		return "", weather.ErrNotFound
	}
	return fmt.Sprintf("%s, %s", places[0].Name, places[0].Country), nil
}

func highlights(cw *weather.CurrentWeather, ap *weather.AirPollution) (Highlights, error) {
	if len(ap.List) == 0 {
		return Highlights{}, fmt.Errorf("%w: air pollution has no samples", weather.ErrInvalidPayload)
	}
	sample := ap.List[0]
	aqi, err := format.AQI(sample.Main.AQI)
	if err != nil {
		return Highlights{}, err
	}

	return Highlights{
		Humidity:     cw.Main.Humidity,
		Pressure:     cw.Main.Pressure,
		VisibilityKm: format.Kilometers(cw.Visibility),
		FeelsLike:    format.Truncate(cw.Main.FeelsLike),
		Sunrise:      format.LocalTime(cw.Sys.Sunrise, cw.Timezone),
		Sunset:       format.LocalTime(cw.Sys.Sunset, cw.Timezone),
		AQI:          sample.Main.AQI,
		AQILevel:     aqi.Level,
		AQIMessage:   aqi.Message,
		NO2:          sample.Components.NO2,
		O3:           sample.Components.O3,
		SO2:          sample.Components.SO2,
		PM25:         sample.Components.PM25,
	}, nil
}

// hourly builds the 24h slider from the first eight 3-hour steps
func hourly(fc *weather.Forecast, iconBase string) ([]HourlyCard, []WindCard, error) {
	n := min(hourlyEntries, len(fc.List))
	temps := make([]HourlyCard, 0, n)
	winds := make([]WindCard, 0, n)

	for _, e := range fc.List[:n] {
		if len(e.Weather) == 0 {
			return nil, nil, fmt.Errorf("%w: forecast step %d has no conditions", weather.ErrInvalidPayload, e.Dt)
		}
		hour := format.LocalHourLabel(e.Dt, fc.City.Timezone)
		cond := e.Weather[0]
		temps = append(temps, HourlyCard{
			Hour:        hour,
			IconURL:     format.IconURL(iconBase, cond.Icon),
			Description: cond.Description,
			Temperature: format.Truncate(e.Main.Temp),
		})
		winds = append(winds, WindCard{
			Hour:      hour,
			IconURL:   format.DirectionIcon(iconBase),
			Direction: e.Wind.Deg,
			SpeedKmh:  format.Truncate(format.MpsToKmh(e.Wind.Speed)),
		})
	}
	return temps, winds, nil
}

// days picks one step per day, starting at index 7
func days(fc *weather.Forecast, iconBase string) ([]DayCard, error) {
	var cards []DayCard
	for i := entriesPerDay - 1; i < len(fc.List); i += entriesPerDay {
		e := fc.List[i]
		if len(e.Weather) == 0 {
			return nil, fmt.Errorf("%w: forecast step %d has no conditions", weather.ErrInvalidPayload, e.Dt)
		}
		cond := e.Weather[0]
		cards = append(cards, DayCard{
			IconURL:     format.IconURL(iconBase, cond.Icon),
			Description: cond.Description,
			TempMax:     format.Truncate(e.Main.TempMax),
			Date:        format.DayMonth(e.Dt, fc.City.Timezone),
		})
	}
	return cards, nil
}
