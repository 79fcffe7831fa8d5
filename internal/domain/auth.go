package domain

import "time"

// Identity is the authenticated caller as reported by the hosted auth service.
type Identity struct {
	UserID    string
	Email     string
	Role      string
	FullName  string
	AvatarURL string
}

// TokenPair is a rotated access/refresh token pair issued by the auth service.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresAt    time.Time
}
