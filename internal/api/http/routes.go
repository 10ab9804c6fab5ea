package httpapi

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/surabhi-app/the-weather-forecasting-app/internal/forecast"
	"github.com/surabhi-app/the-weather-forecasting-app/internal/store"
	"github.com/surabhi-app/the-weather-forecasting-app/internal/weather"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(validateLocationQuery, locationQuery{})
	return v
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	v1 := app.Group("/api/v1")

	// One provider round-trip per search; nothing is cached between searches.
	v1.Get("/dashboard", func(c *fiber.Ctx) error {
		locReq, err := parseLocationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		dashboard, err := service.BuildDashboard(c.UserContext(), locReq.toLocation())
		if err != nil {
			return dashboardError(err)
		}
		return c.JSON(newDashboardDTO(dashboard))
	})

	v1.Get("/dashboard/latest", func(c *fiber.Ctx) error {
		locReq, err := parseLocationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		dashboard, err := service.GetLatest(locReq.toLocation())
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no dashboard for requested location")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch dashboard")
		}
		return c.JSON(newDashboardDTO(dashboard))
	})

	v1.Get("/dashboard/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		loc := req.Location.toLocation()
		dashboards, err := service.GetRange(loc, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no dashboard history for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch dashboard history")
		}

		out := make([]dashboardDTO, 0, len(dashboards))
		for _, d := range dashboards {
			out = append(out, newDashboardDTO(d))
		}
		return c.JSON(fiber.Map{
			"location":   loc,
			"from":       req.From,
			"to":         req.To,
			"dashboards": out,
		})
	})

	v1.Post("/forecast/aggregate", func(c *fiber.Ctx) error {
		var req aggregateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		views, err := service.Aggregate(req.samples(), *req.TimezoneOffset, *req.Now)
		if err != nil {
			var verr *forecast.ValidationError
			if errors.As(err, &verr) {
				return fiber.NewError(fiber.StatusUnprocessableEntity, verr.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to aggregate forecast")
		}
		return c.JSON(newViewsDTO(views.Today, views.Days))
	})

	v1.Get("/forecast/priority", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"priority": service.Priority(),
		})
	})
}

func dashboardError(err error) error {
	var verr *forecast.ValidationError
	switch {
	case errors.Is(err, weather.ErrAllProvidersFailed):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	case errors.As(err, &verr):
		// The series came from upstream, so a bad timestamp or offset is the provider's fault.
		return fiber.NewError(fiber.StatusBadGateway, "provider returned an invalid forecast: "+verr.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to build dashboard")
	}
}

// locationQuery holds query parameters for identifying a location.
type locationQuery struct {
	City    string   `validate:"omitempty,max=100"`
	Country string   `validate:"omitempty,len=2,alpha"`
	Lat     *float64 `validate:"omitempty,min=-90,max=90"`
	Lon     *float64 `validate:"omitempty,min=-180,max=180"`
}

// validateLocationQuery requires a city unless both coordinates are given.
func validateLocationQuery(sl validator.StructLevel) {
	q := sl.Current().Interface().(locationQuery)
	if (q.Lat == nil) != (q.Lon == nil) {
		sl.ReportError(q.Lat, "Lat", "Lat", "lat_lon_pair", "")
		return
	}
	if q.City == "" && q.Lat == nil {
		sl.ReportError(q.City, "City", "City", "required", "")
	}
}

func (l locationQuery) toLocation() weather.Location {
	return weather.Location{
		City:    l.City,
		Country: strings.ToUpper(l.Country),
		Lat:     l.Lat,
		Lon:     l.Lon,
	}
}

func parseLocationQuery(c *fiber.Ctx) (locationQuery, error) {
	var q locationQuery

	q.City = strings.TrimSpace(c.Query("city"))
	q.Country = strings.TrimSpace(c.Query("country"))

	var err error
	if q.Lat, err = parseCoordinate(c.Query("lat"), "lat"); err != nil {
		return q, err
	}
	if q.Lon, err = parseCoordinate(c.Query("lon"), "lon"); err != nil {
		return q, err
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}

	return q, nil
}

func parseCoordinate(s, name string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, errors.New("invalid " + name + "; expected a decimal number")
	}
	return &v, nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Location locationQuery
	From     time.Time `validate:"required"`
	To       time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	loc, err := parseLocationQuery(c)
	if err != nil {
		return err
	}
	h.Location = loc

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC(), nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
