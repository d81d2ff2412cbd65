package handlers

import (
	"errors"
	"net/http"

	apperrors "matchday/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondWithPipelineError maps a typed pipeline error onto its HTTP status
// and a stable machine-readable message. Provider internals are only exposed
// when debug mode is on.
func respondWithPipelineError(c *gin.Context, err error, debug bool, logger *zap.Logger) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
		message = "resource not found"
	case errors.Is(err, apperrors.ErrSearchUnavailable):
		status = http.StatusServiceUnavailable
		message = "semantic search unavailable: run the pgvector migration"
	case errors.Is(err, apperrors.ErrEmbedding):
		status = http.StatusBadGateway
		message = "embedding provider request failed"
	case errors.Is(err, apperrors.ErrGeneration):
		status = http.StatusBadGateway
		message = "answer generation failed"
	}

	if logger != nil && status >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.Int("status", status), zap.Error(err))
	}
	if debug {
		message = err.Error()
	}

	c.JSON(status, gin.H{"success": false, "error": message})
}

// respondWithClientError returns a client error (no logging needed for validation errors)
func respondWithClientError(c *gin.Context, statusCode int, userMessage string) {
	c.JSON(statusCode, gin.H{"success": false, "error": userMessage})
}
