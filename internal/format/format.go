// Package format holds the pure formatting helpers of the dashboard. Times are
// shifted by the payload's timezone offset and read as UTC, so results never
// depend on the host clock or timezone.
package format

import (
	"fmt"
	"strconv"
	"time"
)

var weekDayNames = [7]string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"}

var monthNames = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

func shifted(unix int64, tzOffset int) time.Time {
	return time.Unix(unix+int64(tzOffset), 0).UTC()
}

// LocalDate formats as "Ter, 14 de Nov"
func LocalDate(unix int64, tzOffset int) string {
	t := shifted(unix, tzOffset)
	return fmt.Sprintf("%s, %d de %s", weekDayNames[t.Weekday()], t.Day(), monthNames[t.Month()-1])
}

// LocalHourLabel formats as "07h"
func LocalHourLabel(unix int64, tzOffset int) string {
	return fmt.Sprintf("%02dh", shifted(unix, tzOffset).Hour())
}

// LocalTime formats as "HH:MM"
func LocalTime(unix int64, tzOffset int) string {
	t := shifted(unix, tzOffset)
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// DayMonth formats as "14 Nov"
func DayMonth(unix int64, tzOffset int) string {
	t := shifted(unix, tzOffset)
	return fmt.Sprintf("%d %s", t.Day(), monthNames[t.Month()-1])
}

// MpsToKmh converts meters per second to kilometers per hour
func MpsToKmh(mps float64) float64 {
	return mps * 3600 / 1000
}

// Truncate drops the fractional part, rounding toward zero
func Truncate(v float64) int {
	return int(v)
}

// Kilometers renders a distance in meters as kilometers in its shortest form
func Kilometers(meters int) string {
	return strconv.FormatFloat(float64(meters)/1000, 'f', -1, 64)
}

// IconURL resolves an OpenWeatherMap icon code under base
func IconURL(base, code string) string {
	return base + code + ".png"
}

// DirectionIcon is the wind arrow asset under base
func DirectionIcon(base string) string {
	return base + "direction.png"
}
