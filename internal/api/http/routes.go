package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/climatenet-analytics/internal/climate"
)

var validate = validator.New()

// Analyzer is the part of climate.Service exposed over HTTP.
type Analyzer interface {
	Today() time.Time
	Extremes(ctx context.Context, day time.Time) (climate.DayExtremes, error)
	LatestRecommendations(ctx context.Context) (climate.Recommendations, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service Analyzer) {
	// Dashboard contract: today's extremes as {highest, lowest}.
	app.Get("/api/extremes", func(c *fiber.Ctx) error {
		result, err := service.Extremes(c.UserContext(), service.Today())
		if err != nil && !errors.Is(err, climate.ErrNoDevices) {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to analyze extremes")
		}
		return c.JSON(fiber.Map{
			"highest": result.Highest.ByColumn(),
			"lowest":  result.Lowest.ByColumn(),
		})
	})

	v1 := app.Group("/api/v1")

	v1.Get("/extremes", func(c *fiber.Ctx) error {
		var q extremesQuery
		if err := q.bind(c, service.Today()); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		result, err := service.Extremes(c.UserContext(), q.day)
		if err != nil {
			if errors.Is(err, climate.ErrNoDevices) {
				return fiber.NewError(fiber.StatusServiceUnavailable, "device list unavailable")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to analyze extremes")
		}
		return c.JSON(result)
	})

	v1.Get("/recommendations", func(c *fiber.Ctx) error {
		var q recommendationsQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		rec, err := service.LatestRecommendations(c.UserContext())
		if err != nil {
			if errors.Is(err, climate.ErrNoDevices) {
				return fiber.NewError(fiber.StatusServiceUnavailable, "device list unavailable")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to compute recommendations")
		}

		if q.Limit > 0 && len(rec.Locations) > q.Limit {
			rec.Locations = rec.Locations[:q.Limit]
		}
		return c.JSON(rec)
	})
}

// extremesQuery holds query parameters for the extremes endpoint.
type extremesQuery struct {
	Date string `validate:"omitempty,datetime=2006-01-02"`
	day  time.Time
}

func (q *extremesQuery) bind(c *fiber.Ctx, today time.Time) error {
	q.Date = c.Query("date")
	if err := validate.Struct(q); err != nil {
		return err
	}
	if q.Date == "" {
		q.day = today
		return nil
	}

	day, err := time.Parse(climate.DateLayout, q.Date)
	if err != nil {
		return err
	}
	if day.After(today) {
		return errors.New("date must not be in the future")
	}
	q.day = day
	return nil
}

// recommendationsQuery holds query parameters for the recommendations endpoint.
type recommendationsQuery struct {
	Limit int `validate:"omitempty,min=1,max=500"`
}

func (q *recommendationsQuery) bind(c *fiber.Ctx) error {
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return errors.New("limit must be an integer")
		}
		if n == 0 {
			return errors.New("limit must be between 1 and 500")
		}
		q.Limit = n
	}
	return validate.Struct(q)
}
