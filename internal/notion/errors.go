package notion

import (
	"errors"
	"fmt"
)

// ErrInvalidToken indicates the integration token was rejected
var ErrInvalidToken = errors.New("invalid or expired Notion integration token")

// ErrRateLimited indicates the API rate limit was exceeded
var ErrRateLimited = errors.New("notion API rate limit exceeded")

// ServerError represents a 5xx error from the Notion API
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("Notion server error: HTTP %d", e.StatusCode)
}

// APIError is a structured error response from the Notion API
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Notion API error %s (status %d): %s", e.Code, e.Status, e.Message)
}

// FetchError wraps a failure fetching a single document. One failing
// document must not abort the whole run.
type FetchError struct {
	PageID string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch page %s: %v", e.PageID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
