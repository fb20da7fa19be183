package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/neberku/neberku-backend/internal/common"
	"github.com/neberku/neberku-backend/internal/service"
	pkglogger "github.com/neberku/neberku-backend/pkg/logger"
)

// respondError maps service errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	var rejected *service.ContributionError
	switch {
	case errors.As(err, &rejected):
		common.ErrorResponse(c, http.StatusBadRequest, rejected.Message, err)
	case errors.Is(err, common.ErrEventNotFound),
		errors.Is(err, common.ErrPostNotFound),
		errors.Is(err, common.ErrMediaNotFound):
		common.ErrorResponse(c, http.StatusNotFound, err.Error(), err)
	case errors.Is(err, common.ErrInvalidCode):
		common.ErrorResponse(c, http.StatusNotFound, "Invalid contributor code", err)
	case errors.Is(err, common.ErrEventPrivate):
		common.ErrorResponse(c, http.StatusForbidden, "This event is private. Use the contributor code to access it.", err)
	case errors.Is(err, common.ErrForbidden):
		common.ErrorResponse(c, http.StatusForbidden, "Only the event host can do this", err)
	case errors.Is(err, common.ErrPackageLimitReached):
		common.ErrorResponse(c, http.StatusConflict, "The event package has no remaining allowance for this media type", err)
	default:
		_ = c.Error(err)
		pkglogger.GetLogger().Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		common.ErrorResponse(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
