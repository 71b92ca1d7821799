package dto

import (
	"net/http"

	"github.com/facturo/backend/internal/domain/shared"
)

// Additional edge-only error codes. Domain codes come from shared.
const (
	// ErrCodeBadRequest is used for malformed requests the domain never sees
	ErrCodeBadRequest = "BAD_REQUEST"
)

// errorCodeHTTPStatus maps stable error codes to HTTP status codes.
// DATA_SOURCE maps to 503: the query layer is down and the caller may retry.
var errorCodeHTTPStatus = map[string]int{
	shared.CodeValidation: http.StatusBadRequest,
	shared.CodeNotFound:   http.StatusNotFound,
	shared.CodeDataSource: http.StatusServiceUnavailable,
	shared.CodeCache:      http.StatusInternalServerError,
	shared.CodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest:     http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status for an error code, defaulting to 500
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
