package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gardenhub/backend/internal/apperr"
)

// Body is the standard API response envelope.
type Body struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Code    apperr.Kind `json:"code,omitempty"`
	Error   string      `json:"error,omitempty"`
	Detail  string      `json:"detail,omitempty"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

// NoContent sends 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends 400 with a validation message.
func BadRequest(c *gin.Context, err string) {
	Fail(c, apperr.ValidationFailed, err)
}

// Fail sends the status for kind with message.
func Fail(c *gin.Context, kind apperr.Kind, message string) {
	c.AbortWithStatusJSON(apperr.Status(kind), Body{Success: false, Code: kind, Error: message})
}

// Error renders err as an error envelope. Messages of *apperr.Error values are shown as-is;
// internal causes are attached to the context for the logger and only serialized in debug mode.
func Error(c *gin.Context, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.Wrap(apperr.Unexpected, "internal server error", err)
	}
	body := Body{Success: false, Code: ae.Kind, Error: ae.Message}
	switch ae.Kind {
	case apperr.Unexpected:
		body.Error = "internal server error"
	case apperr.DatabaseUnavailable:
		body.Error = "service temporarily unavailable, retry later"
	}
	if ae.Err != nil {
		_ = c.Error(err)
		if gin.Mode() == gin.DebugMode {
			body.Detail = ae.Err.Error()
		}
	}
	c.AbortWithStatusJSON(apperr.Status(ae.Kind), body)
}
