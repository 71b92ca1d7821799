package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/facturo/backend/internal/domain/shared"
	"github.com/facturo/backend/internal/interfaces/http/dto"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// Success sends a 200 response with the standard envelope
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with an explicit status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// DomainError maps a domain error onto the wire: the stable code picks the
// HTTP status, and unexpected errors collapse to INTERNAL with an opaque
// message.
func (h *BaseHandler) DomainError(c *gin.Context, err error) {
	var de *shared.DomainError
	if errors.As(err, &de) {
		h.Error(c, dto.GetHTTPStatus(de.Code), de.Code, de.Message)
		return
	}
	h.Error(c, http.StatusInternalServerError, shared.CodeInternal, "internal error")
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, shared.CodeNotFound, message)
}
