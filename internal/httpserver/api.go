package httpserver

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/ncecere/copilot_usage_dashboard/internal/app"
	"github.com/ncecere/copilot_usage_dashboard/internal/githubapi"
	"github.com/ncecere/copilot_usage_dashboard/internal/httpserver/httputil"
	"github.com/ncecere/copilot_usage_dashboard/internal/source"
	"github.com/ncecere/copilot_usage_dashboard/internal/timeutil"
)

func registerAPIRoutes(app *fiber.App, container *app.Container) {
	api := app.Group("/api")

	api.Get("/metrics", func(c *fiber.Ctx) error {
		filter, err := parseFilter(c)
		if err != nil {
			return httputil.WriteError(c, fiber.StatusBadRequest, err.Error())
		}
		records, err := container.Usage.Records(c.UserContext(), filter)
		if err != nil {
			return writeSourceError(c, err)
		}
		return c.JSON(records)
	})

	api.Get("/metrics/summary", func(c *fiber.Ctx) error {
		filter, err := parseFilter(c)
		if err != nil {
			return httputil.WriteError(c, fiber.StatusBadRequest, err.Error())
		}
		summary, err := container.Usage.Summary(c.UserContext(), filter)
		if err != nil {
			return writeSourceError(c, err)
		}
		return c.JSON(summary)
	})

	api.Get("/seats", func(c *fiber.Ctx) error {
		filter, err := parseFilter(c)
		if err != nil {
			return httputil.WriteError(c, fiber.StatusBadRequest, err.Error())
		}
		summary, err := container.Seats.Summary(c.UserContext(), filter)
		if err != nil {
			return writeSourceError(c, err)
		}
		return c.JSON(summary)
	})

	api.Get("/features", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"dashboard": container.Config.Features.Dashboard,
			"seats":     container.Config.Features.Seats,
		})
	})
}

func parseFilter(c *fiber.Ctx) (source.Filter, error) {
	filter := source.Filter{
		Enterprise:   c.Query("enterprise"),
		Organization: c.Query("organization"),
		Team:         c.Query("team"),
	}

	if raw := c.Query("since"); raw != "" {
		day, err := timeutil.ParseDay(raw)
		if err != nil {
			return source.Filter{}, fmt.Errorf("invalid since date %q", raw)
		}
		filter.Since = day
	}
	if raw := c.Query("until"); raw != "" {
		day, err := timeutil.ParseDay(raw)
		if err != nil {
			return source.Filter{}, fmt.Errorf("invalid until date %q", raw)
		}
		filter.Until = day
	}
	if !filter.Since.IsZero() && !filter.Until.IsZero() && filter.Until.Before(filter.Since) {
		return source.Filter{}, fmt.Errorf("until date precedes since date")
	}
	return filter, nil
}

func writeSourceError(c *fiber.Ctx, err error) error {
	var statusErr *source.StatusError
	if errors.As(err, &statusErr) {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":           "upstream request failed",
			"entity":          statusErr.Entity,
			"upstream_status": statusErr.Status,
		})
	}
	if errors.Is(err, githubapi.ErrMissingEntity) {
		return httputil.WriteError(c, fiber.StatusBadRequest, err.Error())
	}
	slog.Error("request failed", "path", c.Path(), "error", err)
	return httputil.WriteError(c, fiber.StatusInternalServerError, "")
}
