package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietstay/service-booking/internal/pkg/domain"
)

// envelope is the common JSON response shape.
type envelope struct {
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Success writes a 200 response with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Data: data})
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Data: data})
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, envelope{Error: message})
}

// Error maps a domain error to the corresponding HTTP status. Unknown errors
// become 500 with a generic message so internals do not leak.
func Error(c *gin.Context, err error) {
	var domErr *domain.DomainError
	if !errors.As(err, &domErr) {
		c.JSON(http.StatusInternalServerError, envelope{Error: "internal server error"})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(domErr.Err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(domErr.Err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(domErr.Err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(domErr.Err, domain.ErrConflict), errors.Is(domErr.Err, domain.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(domErr.Err, domain.ErrInvalidSignature), errors.Is(domErr.Err, domain.ErrAmountMismatch):
		status = http.StatusBadRequest
	}

	c.JSON(status, envelope{Error: domErr.Message})
}
