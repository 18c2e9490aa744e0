package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"parkcore/pkg/domain"
)

// Error codes that do not come from a domain.ErrorKind.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeRateLimited    = "RATE_LIMITED"
	CodeInternal       = "INTERNAL"
	CodeUnavailable    = "UNAVAILABLE"
)

// statusFor maps a domain error kind to an HTTP status.
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindZoneNotFound, domain.KindDinosaurNotFound:
		return http.StatusNotFound
	case domain.KindZoneAlreadyExists, domain.KindDuplicateDinosaur:
		return http.StatusConflict
	case domain.KindZoneUnavailable, domain.KindCompatibilityViolation:
		return http.StatusUnprocessableEntity
	case domain.KindUnknownSpecies, domain.KindInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as an ErrorResponse. Domain failures are logged at
// info; anything else is an internal error.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		logger.Info("request rejected", "code", string(de.Kind), "error", err)
		c.JSON(statusFor(de.Kind), ErrorResponse{Error: err.Error(), Code: string(de.Kind)})
		return
	}
	logger.Error("request failed", "error", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: CodeInternal})
}

func writeBindError(c *gin.Context, logger *slog.Logger, err error) {
	logger.Warn("invalid request body", "error", err)
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: CodeInvalidRequest, Details: err.Error()})
}
