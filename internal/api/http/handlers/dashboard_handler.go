package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/fixit-suporte/fixit-gateway/internal/auth"
	"github.com/fixit-suporte/fixit-gateway/internal/service"
	apperrors "github.com/fixit-suporte/fixit-gateway/pkg/util"
)

// DashboardHandler exposes the aggregated views.
type DashboardHandler struct {
	reports *service.ReportService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(reports *service.ReportService) *DashboardHandler {
	return &DashboardHandler{reports: reports}
}

// Summary handles GET /dashboard/summary.
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("no active session")
	}
	summary, err := h.reports.Summary(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}

// Report handles GET /reports. An optional period_days parameter limits
// the window; zero or absent means everything.
func (h *DashboardHandler) Report(c *fiber.Ctx) error {
	periodDays := 0
	if raw := c.Query("period_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return apperrors.NewValidationError("period_days must be a non-negative integer", nil)
		}
		periodDays = parsed
	}

	report, err := h.reports.BuildReport(c.UserContext(), periodDays)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}
