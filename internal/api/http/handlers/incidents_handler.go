package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fixit-suporte/fixit-gateway/internal/api/dto"
	"github.com/fixit-suporte/fixit-gateway/internal/auth"
	"github.com/fixit-suporte/fixit-gateway/internal/backend"
	"github.com/fixit-suporte/fixit-gateway/internal/domain"
	"github.com/fixit-suporte/fixit-gateway/internal/service"
	apperrors "github.com/fixit-suporte/fixit-gateway/pkg/util"
)

// IncidentsHandler exposes the incident lifecycle endpoints.
type IncidentsHandler struct {
	incidents *service.IncidentService
}

// NewIncidentsHandler constructs handler.
func NewIncidentsHandler(incidents *service.IncidentService) *IncidentsHandler {
	return &IncidentsHandler{incidents: incidents}
}

// List handles GET /incidents. A q parameter searches free-text; the
// status, priority and department parameters filter server-side. Search
// and filter are mutually exclusive, search wins.
func (h *IncidentsHandler) List(c *fiber.Ctx) error {
	if query := c.Query("q"); query != "" {
		incidents, err := h.incidents.Search(c.UserContext(), query)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": dto.FromIncidents(incidents)})
	}

	incidents, err := h.incidents.Filter(c.UserContext(), backend.FilterCriteria{
		Status:     c.Query("status"),
		Priority:   c.Query("priority"),
		Department: c.Query("department"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromIncidents(incidents)})
}

// Search handles GET /incidents/search?q=.
func (h *IncidentsHandler) Search(c *fiber.Ctx) error {
	incidents, err := h.incidents.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromIncidents(incidents)})
}

// Filter handles GET /incidents/filter?status=&priority=&department=.
func (h *IncidentsHandler) Filter(c *fiber.Ctx) error {
	incidents, err := h.incidents.Filter(c.UserContext(), backend.FilterCriteria{
		Status:     c.Query("status"),
		Priority:   c.Query("priority"),
		Department: c.Query("department"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromIncidents(incidents)})
}

// Create handles POST /incidents.
func (h *IncidentsHandler) Create(c *fiber.Ctx) error {
	actor := mustActor(c)
	var req dto.CreateIncidentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	created, err := h.incidents.Create(c.UserContext(), actor, service.CreateIncidentInput{
		Title:       req.Title,
		Description: req.Description,
		Department:  req.Department,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromIncident(*created)})
}

// Get handles GET /incidents/:id. The response carries the caller's
// permission set so a client renders exactly the actions available.
func (h *IncidentsHandler) Get(c *fiber.Ctx) error {
	actor := mustActor(c)
	incident, permissions, err := h.incidents.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.IncidentDetailResponse{
		Incident:    dto.FromIncident(*incident),
		Permissions: permissions,
	}})
}

// Claim handles POST /incidents/:id/claim.
func (h *IncidentsHandler) Claim(c *fiber.Ctx) error {
	actor := mustActor(c)
	updated, err := h.incidents.Claim(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromIncident(*updated)})
}

// Assign handles POST /incidents/:id/assign.
func (h *IncidentsHandler) Assign(c *fiber.Ctx) error {
	actor := mustActor(c)
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TechnicianID == "" {
		return apperrors.NewValidationError("technician_id is required", nil)
	}

	updated, err := h.incidents.Assign(c.UserContext(), actor, c.Params("id"), req.TechnicianID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromIncident(*updated)})
}

// Solve handles POST /incidents/:id/solve.
func (h *IncidentsHandler) Solve(c *fiber.Ctx) error {
	actor := mustActor(c)
	updated, err := h.incidents.Solve(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromIncident(*updated)})
}

// Comment handles POST /incidents/:id/comments.
func (h *IncidentsHandler) Comment(c *fiber.Ctx) error {
	actor := mustActor(c)
	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	updated, err := h.incidents.Comment(c.UserContext(), actor, c.Params("id"), req.Message)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromIncident(*updated)})
}

// Delete handles DELETE /incidents/:id.
func (h *IncidentsHandler) Delete(c *fiber.Ctx) error {
	actor := mustActor(c)
	if err := h.incidents.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// mustActor is safe behind the auth middleware; a missing principal means
// a route was wired without it.
func mustActor(c *fiber.Ctx) *domain.User {
	actor, _ := auth.ActorFromContext(c)
	return actor
}
