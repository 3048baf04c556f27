package dto

import (
	"net/http"

	"github.com/taskboard/taskboard/internal/domain/shared"
)

// Error codes returned in the error envelope
const (
	ErrCodeValidation  = shared.CodeValidation
	ErrCodeNotFound    = shared.CodeNotFound
	ErrCodeConflict    = shared.CodeConflict
	ErrCodeRateLimited = "RATE_LIMIT_EXCEEDED"
	ErrCodeTooLarge    = "REQUEST_TOO_LARGE"
	ErrCodeUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeInternal    = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeNotFound:    http.StatusNotFound,
	ErrCodeConflict:    http.StatusConflict,
	ErrCodeRateLimited: http.StatusTooManyRequests,
	ErrCodeTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeUnavailable: http.StatusServiceUnavailable,
	ErrCodeInternal:    http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
