package service

import "github.com/portkey-logistics/portkey/internal/domain"

// Actor identifies the caller of a service operation.
type Actor struct {
	UserID string
	Role   domain.ProfileRole
}

// IsAdmin reports whether the actor sees every shipment.
func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

func (a Actor) owns(s *domain.Shipment) bool {
	return a.IsAdmin() || s.UserID == a.UserID
}

func (a Actor) scope() *string {
	if a.IsAdmin() {
		return nil
	}
	id := a.UserID
	return &id
}
