// Package api provides the HTTP handlers for the guide/tuning query surface.
package api

// ErrorResponse is the standard error envelope for API responses
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
