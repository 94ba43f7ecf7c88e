package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/everyskill/everyskill-backend/internal/services"
)

type APIError struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondServiceError maps service-layer errors to the structured
// payload. Pipeline errors carry retryable: true; internals never leak
// beyond the message text.
func RespondServiceError(c *gin.Context, err error) {
	var pre *services.PreconditionError
	if errors.As(err, &pre) {
		c.JSON(preconditionStatus(pre.Code), ErrorEnvelope{
			Error: APIError{Message: pre.Message, Code: pre.Code},
		})
		return
	}
	var pipe *services.PipelineError
	if errors.As(err, &pipe) {
		c.JSON(http.StatusBadGateway, ErrorEnvelope{
			Error: APIError{Message: pipe.Message, Code: "review_pipeline_failed", Retryable: pipe.Retryable},
		})
		return
	}
	RespondError(c, http.StatusInternalServerError, "internal_error", err)
}

func preconditionStatus(code string) int {
	switch code {
	case services.CodeUnauthenticated:
		return http.StatusUnauthorized
	case services.CodeNotOwner:
		return http.StatusForbidden
	case services.CodeNotFound:
		return http.StatusNotFound
	case services.CodeInvalidTransition, services.CodeContentUnchanged:
		return http.StatusConflict
	case services.CodeMissingCredential, services.CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
