package response

import (
	"net/http"

	"flickhub/internal/core/apperr"
)

// HeaderRequestID names both the request-id header and the gin context key holding it.
const HeaderRequestID = "X-Request-ID"

const (
	StatusBadRequest   = http.StatusBadRequest
	StatusUnauthorized = http.StatusUnauthorized
	StatusNotFound     = http.StatusNotFound
	StatusConflict     = http.StatusConflict
	StatusTooLarge     = http.StatusRequestEntityTooLarge
	StatusServerError  = http.StatusInternalServerError
	StatusUnavailable  = http.StatusServiceUnavailable
	StatusTimeout      = http.StatusGatewayTimeout
)

// StatusMsgMap holds the user-facing default message per status.
var StatusMsgMap = map[int]string{
	StatusBadRequest:   "Invalid request",
	StatusUnauthorized: "Invalid credentials",
	StatusNotFound:     "Not found",
	StatusConflict:     "Conflict",
	StatusTooLarge:     "Request body too large",
	StatusServerError:  "Internal server error",
	StatusUnavailable:  "Service unavailable",
	StatusTimeout:      "Request timed out",
}

// StatusOf maps an apperr kind to its HTTP status.
func StatusOf(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return StatusBadRequest
	case apperr.KindConflict:
		return StatusConflict
	case apperr.KindAuth:
		return StatusUnauthorized
	case apperr.KindNotFound:
		return StatusNotFound
	case apperr.KindUnavailable:
		return StatusUnavailable
	default:
		// upstream and internal failures are both reported as 500
		return StatusServerError
	}
}
