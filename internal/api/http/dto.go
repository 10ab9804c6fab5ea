package httpapi

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/surabhi-app/the-weather-forecasting-app/internal/common"
	"github.com/surabhi-app/the-weather-forecasting-app/internal/forecast"
	"github.com/surabhi-app/the-weather-forecasting-app/internal/weather"
)

// Display layouts. Local instants are rendered as UTC wall-clock fields.
const (
	slotLabelLayout  = "Jan 2, 3:04 PM"
	dayLabelLayout   = "Monday"
	dateLabelLayout  = "Today, Jan 2"
	clockLabelLayout = "Jan 2, 2006 3:04 PM"
)

type sampleDTO struct {
	Dt          int64    `json:"dt"`
	LocalDay    string   `json:"localDay"`
	Label       string   `json:"label"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	WindSpeed   *float64 `json:"windSpeed"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
}

type daySummaryDTO struct {
	Day         string      `json:"day"`
	Label       string      `json:"label"`
	Min         *float64    `json:"min"`
	Max         *float64    `json:"max"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Samples     []sampleDTO `json:"samples"`
}

type currentDTO struct {
	Dt          int64    `json:"dt"`
	Temperature *float64 `json:"temperature"`
	FeelsLike   *float64 `json:"feelsLike"`
	Humidity    *float64 `json:"humidity"`
	WindSpeed   *float64 `json:"windSpeed"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
}

type viewsDTO struct {
	Today []sampleDTO     `json:"today"`
	Days  []daySummaryDTO `json:"days"`
}

type dashboardDTO struct {
	ID             uuid.UUID        `json:"id"`
	Location       weather.Location `json:"location"`
	City           string           `json:"city"`
	Provider       string           `json:"provider"`
	TimezoneOffset int64            `json:"timezoneOffset"`
	GeneratedAt    time.Time        `json:"generatedAt"`
	LocalDate      string           `json:"localDate"`
	LocalTime      string           `json:"localTime"`
	Current        currentDTO       `json:"current"`
	viewsDTO
}

func newSampleDTO(s forecast.LocalizedSample) sampleDTO {
	return sampleDTO{
		Dt:          s.TimestampUTC,
		LocalDay:    s.LocalDayKey,
		Label:       s.LocalTime().Format(slotLabelLayout),
		Temperature: common.NullableFloat(s.Temperature),
		Humidity:    common.NullableFloat(s.Humidity),
		WindSpeed:   common.NullableFloat(s.WindSpeed),
		Description: s.Description,
		Icon:        s.IconCode,
	}
}

func newSampleDTOs(samples []forecast.LocalizedSample) []sampleDTO {
	out := make([]sampleDTO, 0, len(samples))
	for _, s := range samples {
		out = append(out, newSampleDTO(s))
	}
	return out
}

func newDaySummaryDTO(d forecast.DailySummary) daySummaryDTO {
	return daySummaryDTO{
		Day:         d.DayKey,
		Label:       weekdayLabel(d),
		Min:         common.NullableFloat(d.MinTemperature),
		Max:         common.NullableFloat(d.MaxTemperature),
		Description: d.RepresentativeDescription,
		Icon:        d.RepresentativeIconCode,
		Samples:     newSampleDTOs(d.Samples),
	}
}

func weekdayLabel(d forecast.DailySummary) string {
	if len(d.Samples) > 0 {
		return d.Samples[0].LocalTime().Format(dayLabelLayout)
	}
	day, err := time.Parse(forecast.DayKeyLayout, d.DayKey)
	if err != nil {
		return ""
	}
	return day.Format(dayLabelLayout)
}

func newViewsDTO(today []forecast.LocalizedSample, days []forecast.DailySummary) viewsDTO {
	out := viewsDTO{
		Today: newSampleDTOs(today),
		Days:  make([]daySummaryDTO, 0, len(days)),
	}
	for _, d := range days {
		out.Days = append(out.Days, newDaySummaryDTO(d))
	}
	return out
}

func newDashboardDTO(d weather.Dashboard) dashboardDTO {
	local := time.Unix(forecast.Localize(d.GeneratedAt.Unix(), d.TimezoneOffset).Instant, 0).UTC()
	return dashboardDTO{
		ID:             d.ID,
		Location:       d.Location,
		City:           d.City,
		Provider:       d.Provider,
		TimezoneOffset: d.TimezoneOffset,
		GeneratedAt:    d.GeneratedAt,
		LocalDate:      local.Format(dateLabelLayout),
		LocalTime:      local.Format(clockLabelLayout),
		Current: currentDTO{
			Dt:          d.Current.TimestampUTC,
			Temperature: common.NullableFloat(d.Current.Temperature),
			FeelsLike:   common.NullableFloat(d.Current.FeelsLike),
			Humidity:    common.NullableFloat(d.Current.Humidity),
			WindSpeed:   common.NullableFloat(d.Current.WindSpeed),
			Description: d.Current.Description,
			Icon:        d.Current.IconCode,
		},
		viewsDTO: newViewsDTO(d.Today, d.Days),
	}
}

// sampleInput is one entry of an aggregate request. Missing readings are
// accepted as null and treated as unknown.
type sampleInput struct {
	Dt          *int64   `json:"dt" validate:"required"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	WindSpeed   *float64 `json:"windSpeed"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
}

func (in sampleInput) toSample() forecast.Sample {
	return forecast.Sample{
		TimestampUTC: *in.Dt,
		Temperature:  orNaN(in.Temperature),
		Description:  in.Description,
		IconCode:     in.Icon,
		Humidity:     orNaN(in.Humidity),
		WindSpeed:    orNaN(in.WindSpeed),
	}
}

type aggregateRequest struct {
	TimezoneOffset *int64        `json:"timezoneOffset" validate:"required"`
	Now            *int64        `json:"now" validate:"required"`
	Samples        []sampleInput `json:"samples" validate:"dive"`
}

func (r aggregateRequest) samples() []forecast.Sample {
	out := make([]forecast.Sample, 0, len(r.Samples))
	for _, in := range r.Samples {
		out = append(out, in.toSample())
	}
	return out
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
