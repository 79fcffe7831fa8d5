package dto

import (
	"time"

	"github.com/portkey-logistics/portkey/internal/domain"
)

// SyncProfileRequest carries optional overrides for the caller's profile.
// Id and email always come from the verified token.
type SyncProfileRequest struct {
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
}

// ProfileResponse response.
type ProfileResponse struct {
	ID        string             `json:"id"`
	Email     string             `json:"email"`
	FullName  string             `json:"full_name"`
	Role      domain.ProfileRole `json:"role"`
	AvatarURL string             `json:"avatar_url,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// UpdateRoleRequest is the admin role assignment body.
type UpdateRoleRequest struct {
	Role domain.ProfileRole `json:"role"`
}
