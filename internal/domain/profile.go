package domain

import "time"

// ProfileRole grants visibility over shipments.
type ProfileRole string

const (
	RoleAdmin  ProfileRole = "admin"
	RoleBroker ProfileRole = "broker"
	RoleClient ProfileRole = "client"
)

// Valid reports whether r is a known role.
func (r ProfileRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleBroker, RoleClient:
		return true
	}
	return false
}

// Profile mirrors an auth user inside the application database.
type Profile struct {
	ID        string
	Email     string
	FullName  string
	Role      ProfileRole
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin reports whether the profile may see every shipment.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
