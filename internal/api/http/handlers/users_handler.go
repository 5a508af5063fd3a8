package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fixit-suporte/fixit-gateway/internal/api/dto"
	"github.com/fixit-suporte/fixit-gateway/internal/directory"
	"github.com/fixit-suporte/fixit-gateway/internal/domain"
	apperrors "github.com/fixit-suporte/fixit-gateway/pkg/util"
)

// UsersHandler exposes the admin account-management endpoints.
type UsersHandler struct {
	directory *directory.Directory
}

// NewUsersHandler constructs handler.
func NewUsersHandler(dir *directory.Directory) *UsersHandler {
	return &UsersHandler{directory: dir}
}

// List handles GET /users. The view merges local accounts with the
// backend's; the backend wins on email collisions.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.directory.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromUsers(users)})
}

// Technicians handles GET /users/technicians.
func (h *UsersHandler) Technicians(c *fiber.Ctx) error {
	techs, err := h.directory.Technicians(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromUsers(techs)})
}

// CreateTechnician handles POST /users/technicians.
func (h *UsersHandler) CreateTechnician(c *fiber.Ctx) error {
	var req dto.CreateTechnicianRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	created, err := h.directory.CreateTechnician(c.UserContext(), directory.TechnicianProfile{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Telephone: req.Telephone,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromUser(created.Sanitized())})
}

// Update handles PUT /users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	update := directory.UserUpdate{
		Name:       req.Name,
		Email:      req.Email,
		Telephone:  req.Telephone,
		Department: req.Department,
	}
	if req.Role != nil {
		role := domain.ParseRole(*req.Role)
		update.Role = &role
	}

	updated, err := h.directory.UpdateUser(c.UserContext(), c.Params("id"), update)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(updated.Sanitized())})
}

// Delete handles DELETE /users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	if err := h.directory.DeleteUser(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
