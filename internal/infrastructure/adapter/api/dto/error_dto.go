package dto

// ErrorResponse is the body of every failed request. Code is the numeric
// domain error code; RequestID echoes X-Request-ID for support lookups.
type ErrorResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}
