package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/portkey-logistics/portkey/internal/domain"
	"github.com/portkey-logistics/portkey/internal/events"
	"github.com/portkey-logistics/portkey/internal/repository"
	apperrors "github.com/portkey-logistics/portkey/pkg/util"
)

const (
	defaultProfileLimit = 50
	maxProfileLimit     = 200
)

// ProfileService keeps application profiles in step with auth users and lets
// admins manage staff.
type ProfileService struct {
	profiles   repository.ProfileRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ProfileSyncInput carries the auth user fields mirrored into a profile.
type ProfileSyncInput struct {
	ID        string
	Email     string
	FullName  string
	AvatarURL string
}

// NewProfileService constructs the service. dispatcher may be nil.
func NewProfileService(profiles repository.ProfileRepository, dispatcher events.Dispatcher, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{profiles: profiles, dispatcher: dispatcher, logger: logger}
}

// Sync creates the profile on first sight and refreshes its contact fields
// afterwards. New profiles start as clients; an existing role is kept.
func (s *ProfileService) Sync(ctx context.Context, input ProfileSyncInput) (*domain.Profile, error) {
	id := strings.TrimSpace(input.ID)
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewFieldError("id", "must be a valid UUID")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.NewFieldError("email", "must be a valid email address")
	}

	profile := &domain.Profile{
		ID:        id,
		Email:     email,
		FullName:  strings.TrimSpace(input.FullName),
		AvatarURL: strings.TrimSpace(input.AvatarURL),
		Role:      domain.RoleClient,
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// SyncIdentity mirrors a verified auth identity.
func (s *ProfileService) SyncIdentity(ctx context.Context, identity *domain.Identity) (*domain.Profile, error) {
	if identity == nil {
		return nil, apperrors.NewUnauthorized("no identity")
	}
	return s.Sync(ctx, ProfileSyncInput{
		ID:        identity.UserID,
		Email:     identity.Email,
		FullName:  identity.FullName,
		AvatarURL: identity.AvatarURL,
	})
}

// Get returns the caller's profile.
func (s *ProfileService) Get(ctx context.Context, id string) (*domain.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return profile, nil
}

// GetByID satisfies the auth middleware's profile lookup.
func (s *ProfileService) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	return s.profiles.GetByID(ctx, id)
}

// List returns one page of profiles, newest first. Admin only. page is
// 1-based; the offset is taken from the clamped page size.
func (s *ProfileService) List(ctx context.Context, actor Actor, page, pageSize int) ([]domain.Profile, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin role required")
	}
	switch {
	case pageSize <= 0:
		pageSize = defaultProfileLimit
	case pageSize > maxProfileLimit:
		pageSize = maxProfileLimit
	}
	if page < 1 {
		page = 1
	}

	profiles, err := s.profiles.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []domain.Profile{}
	}
	return profiles, nil
}

// SetRole changes a profile's role. Admins cannot change their own role, so
// the last admin can never lock everyone out.
func (s *ProfileService) SetRole(ctx context.Context, actor Actor, id string, role domain.ProfileRole) (*domain.Profile, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin role required")
	}
	role = domain.ProfileRole(strings.ToLower(strings.TrimSpace(string(role))))
	if !role.Valid() {
		return nil, apperrors.NewFieldError("role", "must be one of admin, broker, client")
	}
	current, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.ID == actor.UserID {
		return nil, apperrors.NewForbidden("admins cannot change their own role")
	}
	if current.Role == role {
		return current, nil
	}

	updated, err := s.profiles.UpdateRole(ctx, current.ID, role)
	if err != nil {
		return nil, profileError(err)
	}
	s.publish(ctx, actor, updated.ID, events.ProfileRoleChangedPayload{OldRole: current.Role, NewRole: updated.Role})
	return updated, nil
}

// Delete removes a profile together with the shipments it owns. Admins cannot
// delete themselves.
func (s *ProfileService) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.IsAdmin() {
		return apperrors.NewForbidden("admin role required")
	}
	current, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}
	if current.ID == actor.UserID {
		return apperrors.NewForbidden("admins cannot delete their own profile")
	}
	if err := s.profiles.Delete(ctx, current.ID); err != nil {
		return profileError(err)
	}
	s.publish(ctx, actor, current.ID, events.ProfileDeletedPayload{Email: current.Email})
	return nil
}

func (s *ProfileService) lookup(ctx context.Context, id string) (*domain.Profile, error) {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("profile", map[string]any{"id": id})
	}
	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, profileError(err)
	}
	return profile, nil
}

func (s *ProfileService) publish(ctx context.Context, actor Actor, profileID string, payload events.Payload) {
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:    payload.EventType(),
		OwnerID: profileID,
		ActorID: actor.UserID,
		Payload: payload,
	})
}

func profileError(err error) error {
	if apperrors.KindOf(err) == apperrors.KindNotFound {
		return apperrors.NewNotFound("profile", nil)
	}
	return err
}
