package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tchasinga/adminjobposter/internal/middleware"
	"github.com/tchasinga/adminjobposter/internal/models"
	"github.com/tchasinga/adminjobposter/internal/repository"
)

const requestTimeout = 5 * time.Second

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error:   code,
		Message: message,
	})
}

// storeError maps repository errors to HTTP responses. Unknown errors are
// logged and reported as 500.
func storeError(c *gin.Context, err error, what string) {
	switch {
	case errors.Is(err, repository.ErrInvalidID):
		abortWithError(c, http.StatusBadRequest, "invalid_id", "Invalid "+what+" id")
	case errors.Is(err, repository.ErrNotFound):
		abortWithError(c, http.StatusNotFound, "not_found", what+" not found")
	case errors.Is(err, repository.ErrDuplicateEmail):
		abortWithError(c, http.StatusConflict, "duplicate_email", "A "+what+" with this email already exists")
	default:
		serverError(c, err, what)
	}
}

func serverError(c *gin.Context, err error, what string) {
	slog.Error("request failed",
		"what", what,
		"path", c.FullPath(),
		"request_id", c.GetString(middleware.ContextRequestID),
		"err", err,
	)
	abortWithError(c, http.StatusInternalServerError, "server_error", "Failed to process "+what)
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}
