package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"mrireport/internal/dashboard"
)

// DashboardStore is the part of dashboard.Store the handlers need.
type DashboardStore interface {
	View() dashboard.ViewModel
	Refresh(ctx context.Context) (dashboard.ViewModel, error)
}

// dashboardErrorPayload is the error envelope plus the zeroed view, so the page can still render.
type dashboardErrorPayload struct {
	RequestID string              `json:"request_id"`
	Error     errorEnvelope       `json:"error"`
	Dashboard dashboard.ViewModel `json:"dashboard"`
}

// GetDashboard returns the current admin dashboard view without fetching.
//
// @Summary Admin dashboard counters
// @Tags dashboard
// @Produce json
// @Success 200 {object} dashboard.ViewModel
// @Router /admin/dashboard [get]
func GetDashboard(store DashboardStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(store.View())
	}
}

// RefreshDashboard fetches fresh statistics and returns the resulting view.
//
// @Summary Refresh admin dashboard counters
// @Tags dashboard
// @Produce json
// @Success 200 {object} dashboard.ViewModel
// @Failure 503 {object} dashboardErrorPayload
// @Router /admin/dashboard/refresh [post]
func RefreshDashboard(store DashboardStore, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		vm, err := store.Refresh(ctx)
		if err == nil {
			return c.JSON(vm)
		}

		msg := "aggregate statistics unavailable"
		if errors.Is(err, context.Canceled) {
			msg = "refresh cancelled"
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(dashboardErrorPayload{
			RequestID: requestIDFromCtx(c),
			Error:     errorEnvelope{Code: "DATA_UNAVAILABLE", Message: msg},
			Dashboard: dashboard.Unavailable(dashboard.ErrDataUnavailable),
		})
	}
}
