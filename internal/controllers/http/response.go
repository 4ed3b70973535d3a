package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pos-service/internal/domain"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respond(c *gin.Context, code int, message string, data any) {
	c.JSON(code, Response{Status: "success", Message: message, Data: data})
}

func abortWith(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, Response{Status: "error", Message: message})
}

// statusFor maps domain error kinds onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrOutOfStock):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (h *Handler) respondError(c *gin.Context, err error) {
	code := statusFor(err)
	entry := h.log.WithError(err).WithFields(logrus.Fields{
		"path":       c.FullPath(),
		"request_id": c.GetString(requestIDKey),
	})
	if code == http.StatusInternalServerError {
		entry.Error("request failed")
		abortWith(c, code, "internal server error")
		return
	}
	entry.Warn("request rejected")
	abortWith(c, code, err.Error())
}
