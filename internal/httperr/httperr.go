package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/logger"
)

type HTTPError struct {
	Kind    Kind   `json:"kind,omitempty"`
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

var messages = map[Kind]string{
	KindValidation:        "Invalid request data.",
	KindNotFound:          "Resource not found.",
	KindForbidden:         "You are not allowed to perform this action.",
	KindInvalidTransition: "This action is not allowed in the booking's current state.",
	KindSlotUnavailable:   "The selected time is no longer available.",
	KindUpstream:          "A dependent service failed. Please retry.",
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

// StatusFor maps a kind to its HTTP status.
func StatusFor(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalidTransition, KindSlotUnavailable:
		return http.StatusConflict
	case KindUpstream:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes err as a JSON error body. Unknown errors become 500.
func Respond(c *gin.Context, err error) {
	var be BusinessError
	if !errors.As(err, &be) {
		logger.L().Error("unhandled error",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, HTTPError{
			Code:    "internal_error",
			Message: "Unexpected error.",
		})
		return
	}

	if be.Kind == KindUpstream {
		logger.L().Warn("upstream failure",
			zap.String("path", c.FullPath()),
			zap.String("code", be.Code),
			zap.Error(be.Err),
		)
	}

	c.JSON(StatusFor(be.Kind), HTTPError{
		Kind:    be.Kind,
		Code:    be.Code,
		Message: messages[be.Kind],
	})
}
