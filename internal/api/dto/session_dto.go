package dto

// SessionExchangeRequest hands a browser sign-in over to the server.
type SessionExchangeRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	RedirectTo   string `json:"redirect_to"`
}

// SessionResponse tells the browser where to go once cookies are set.
type SessionResponse struct {
	UserID   string `json:"user_id"`
	Redirect string `json:"redirect"`
}
