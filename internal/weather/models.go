package weather

import (
	"fmt"
	"time"
)

// ReferenceYear is the year the past estimate stands for (500 years before 2025).
const ReferenceYear = 1525

// Reference window of the climatological normal.
const (
	NormalStartYear = 1991
	NormalEndYear   = 2020
)

// Location represents a resolved place for which we compare temperatures.
type Location struct {
	DisplayName string  `json:"displayName"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Timezone    string  `json:"timezone"`
}

// Key returns a canonical string key for indexing this location in stores.
// Coordinates are rounded to three decimals (~100m).
func (l Location) Key() string {
	return fmt.Sprintf("%.3f:%.3f", l.Latitude, l.Longitude)
}

// CurrentReading is today's observed temperature at a location.
type CurrentReading struct {
	TemperatureC float64   `json:"temperatureC"`
	ObservedAt   time.Time `json:"observedAt"`

	// TodayMeanC is today's forecast (max+min)/2, nil when the provider had no daily values.
	TodayMeanC *float64 `json:"todayMeanC,omitempty"`
}

// MonthDay identifies a calendar day independent of year.
type MonthDay struct {
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// MonthDayOf returns the calendar day of t.
func MonthDayOf(t time.Time) MonthDay {
	return MonthDay{Month: t.Month(), Day: t.Day()}
}

// Matches reports whether t falls on this calendar day.
func (md MonthDay) Matches(t time.Time) bool {
	return t.Month() == md.Month && t.Day() == md.Day
}

func (md MonthDay) String() string {
	return fmt.Sprintf("%02d-%02d", int(md.Month), md.Day)
}

// ClimatologyNormal is the multi-year daily mean for one calendar day.
type ClimatologyNormal struct {
	Date  MonthDay `json:"date"`
	MeanC float64  `json:"meanC"`
	Years int      `json:"years"` // number of reference years that contributed
}

// Offsets are the two constant adjustments subtracted from the normal.
type Offsets struct {
	WarmingSince1850C float64 `json:"warmingSince1850C"`
	LIAExtraCoolingC  float64 `json:"liaExtraCoolingC"`
}

// Total returns the combined adjustment.
func (o Offsets) Total() float64 {
	return o.WarmingSince1850C + o.LIAExtraCoolingC
}

// HistoricalEstimate is the approximated temperature for the same day in ReferenceYear.
type HistoricalEstimate struct {
	EstimatedC    float64 `json:"estimatedC"`
	ReferenceYear int     `json:"referenceYear"`
}
