package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"spotaway/internal/domain/shared/fault"
)

// renderError maps a fault kind to its HTTP status and writes the standard
// error body: message plus the per-field errors map when present.
func renderError(c *gin.Context, err error) {
	var f *fault.Fault
	if !errors.As(err, &f) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	body := gin.H{"message": f.Message}
	if len(f.Fields) > 0 {
		body["errors"] = f.Fields
	}
	c.JSON(statusFor(f.Kind), body)
}

func statusFor(kind fault.Kind) int {
	switch kind {
	case fault.KindNotFound:
		return http.StatusNotFound
	case fault.KindForbidden:
		return http.StatusForbidden
	case fault.KindValidationFailed:
		return http.StatusBadRequest
	case fault.KindConflict:
		return http.StatusConflict
	case fault.KindLimitExceeded:
		return http.StatusForbidden
	case fault.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
