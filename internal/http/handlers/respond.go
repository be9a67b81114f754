package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/tasktracker/internal/service"
	"github.com/gin-gonic/gin"
)

const msgNotFound = "Not found."

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	if id := ctx.GetString("request_id"); id != "" {
		return id
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

// RespondError writes the error envelope. The top-level detail repeats the
// message so the proxy can relay it without knowing the envelope.
func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"detail": message,
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondNotFound(ctx *gin.Context) {
	RespondError(ctx, http.StatusNotFound, "not_found", msgNotFound, nil)
}

func RespondForbidden(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusForbidden, "forbidden", message, nil)
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnauthorized, "unauthorized", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

// RespondServiceError maps service errors to statuses. Anything unrecognised is
// logged and hidden behind a generic 500.
func RespondServiceError(ctx *gin.Context, log *slog.Logger, err error) {
	var verr *service.ValidationError
	var perr *service.PermissionError

	switch {
	case errors.As(err, &verr):
		RespondBadRequest(ctx, verr.Message, gin.H{
			"fields": []FieldError{{Field: verr.Field, Rule: "invalid", Message: verr.Message}},
		})
	case errors.As(err, &perr):
		RespondForbidden(ctx, perr.Message)
	case errors.Is(err, service.ErrNotFound):
		RespondNotFound(ctx)
	default:
		log.ErrorContext(ctx.Request.Context(), "request failed", "route", ctx.FullPath(), "err", err)
		RespondInternal(ctx, "A server error occurred.")
	}
}
