package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/portkey-logistics/portkey/internal/api/dto"
	"github.com/portkey-logistics/portkey/internal/auth"
	"github.com/portkey-logistics/portkey/internal/domain"
	"github.com/portkey-logistics/portkey/internal/service"
	apperrors "github.com/portkey-logistics/portkey/pkg/util"
)

// ProfileStore is the profile service surface the users endpoints need.
type ProfileStore interface {
	Sync(ctx context.Context, input service.ProfileSyncInput) (*domain.Profile, error)
	Get(ctx context.Context, id string) (*domain.Profile, error)
}

// UsersHandler exposes the caller's profile.
type UsersHandler struct {
	profiles ProfileStore
}

// NewUsersHandler constructs handler.
func NewUsersHandler(profiles ProfileStore) *UsersHandler {
	return &UsersHandler{profiles: profiles}
}

// Sync POST /api/users/sync.
func (h *UsersHandler) Sync(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SyncProfileRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	input := service.ProfileSyncInput{
		ID:        principal.Identity.UserID,
		Email:     principal.Identity.Email,
		FullName:  principal.Identity.FullName,
		AvatarURL: principal.Identity.AvatarURL,
	}
	if req.FullName != nil {
		input.FullName = *req.FullName
	}
	if req.AvatarURL != nil {
		input.AvatarURL = *req.AvatarURL
	}

	profile, err := h.profiles.Sync(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(profile)})
}

// Me GET /api/users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	profile, err := h.profiles.Get(c.UserContext(), actor.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(profile)})
}
