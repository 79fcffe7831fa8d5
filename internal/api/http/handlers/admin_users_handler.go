package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/portkey-logistics/portkey/internal/api/dto"
	"github.com/portkey-logistics/portkey/internal/domain"
	"github.com/portkey-logistics/portkey/internal/service"
	apperrors "github.com/portkey-logistics/portkey/pkg/util"
)

// ProfileAdmin is the staff management surface of the profile service.
type ProfileAdmin interface {
	List(ctx context.Context, actor service.Actor, page, pageSize int) ([]domain.Profile, error)
	SetRole(ctx context.Context, actor service.Actor, id string, role domain.ProfileRole) (*domain.Profile, error)
	Delete(ctx context.Context, actor service.Actor, id string) error
}

// AdminUsersHandler lets admins list profiles, assign roles and remove users.
type AdminUsersHandler struct {
	profiles ProfileAdmin
}

// NewAdminUsersHandler constructs handler.
func NewAdminUsersHandler(profiles ProfileAdmin) *AdminUsersHandler {
	return &AdminUsersHandler{profiles: profiles}
}

// List GET /api/admin/users?page=&page_size=.
func (h *AdminUsersHandler) List(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 0)

	profiles, err := h.profiles.List(c.UserContext(), actor, page, pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		items = append(items, profileResponse(&profiles[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// SetRole PATCH /api/admin/users/:id/role.
func (h *AdminUsersHandler) SetRole(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	profile, err := h.profiles.SetRole(c.UserContext(), actor, c.Params("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(profile)})
}

// Delete DELETE /api/admin/users/:id.
func (h *AdminUsersHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.profiles.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
