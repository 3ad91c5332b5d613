// Package dto defines request and response shapes for API v1.
package dto

// MessageResponse carries a single human-readable message. The message text
// follows the legacy wording expected by existing clients.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse mirrors the error body produced by the error middleware.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
