package httpapi

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fairchild/envmonitor/internal/dashboard"
	"github.com/fairchild/envmonitor/internal/monitor"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, dashboards *dashboard.Service, sources *monitor.Service, gatherer prometheus.Gatherer) {
	board := app.Group("/dashboard")

	board.Get("/data", func(c *fiber.Ctx) error {
		req, err := parseHoursQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshot, err := dashboards.Snapshot(c.Context(), req.Hours)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to assemble dashboard data")
		}

		return c.JSON(snapshot)
	})

	board.Post("/refresh/:source", func(c *fiber.Ctx) error {
		source := c.Params("source")
		if err := sources.Refresh(source); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		return c.JSON(fiber.Map{
			"message": fmt.Sprintf("Refresh initiated for %s", source),
		})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/metrics", adaptor.HTTPHandler(
		promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
	))
}

// hoursQuery holds the lookback window for the dashboard endpoint.
type hoursQuery struct {
	Hours int `validate:"min=1"`
}

func parseHoursQuery(c *fiber.Ctx) (hoursQuery, error) {
	q := hoursQuery{Hours: 24}

	if raw := c.Query("hours"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil {
			return q, fmt.Errorf("invalid hours parameter %q", raw)
		}
		q.Hours = hours
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}
