package dto

// PageResponse describes a page the browser client renders.
type PageResponse struct {
	Page          string `json:"page"`
	Path          string `json:"path"`
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"user_id,omitempty"`
}
