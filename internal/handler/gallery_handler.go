package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/neberku/neberku-backend/internal/common"
	"github.com/neberku/neberku-backend/internal/domain"
	"github.com/neberku/neberku-backend/internal/service"
	"github.com/neberku/neberku-backend/pkg/ginutil"
)

// GalleryHandler public gallery of a live event
type GalleryHandler struct {
	service *service.GalleryService
}

// NewGalleryHandler creates a new GalleryHandler
func NewGalleryHandler(service *service.GalleryService) *GalleryHandler {
	return &GalleryHandler{service: service}
}

// Posts handles GET /api/v1/public-events/:id/posts
// @Summary Approved guest posts
// @Tags gallery
// @Produce json
// @Param id path string true "Event ID"
// @Param code query string false "Contributor code (private events)"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} common.APIResponse{data=service.PostPage}
// @Router /public-events/{id}/posts [get]
func (h *GalleryHandler) Posts(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid event ID", err)
		return
	}
	page, limit := ginutil.Pagination(c)

	result, err := h.service.Posts(c.Request.Context(), eventID, c.Query("code"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	common.SuccessResponse(c, result.Posts, &result.Meta)
}

// Media handles GET /api/v1/public-events/:id/media
// @Summary Approved media files
// @Tags gallery
// @Produce json
// @Param id path string true "Event ID"
// @Param type query string false "photo, video or voice"
// @Param code query string false "Contributor code (private events)"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} common.APIResponse{data=[]domain.MediaFile}
// @Router /public-events/{id}/media [get]
func (h *GalleryHandler) Media(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid event ID", err)
		return
	}

	mediaType := domain.MediaType(c.Query("type"))
	switch mediaType {
	case "", domain.MediaPhoto, domain.MediaVideo, domain.MediaVoice:
	default:
		common.ErrorResponse(c, http.StatusBadRequest, "type must be photo, video or voice", nil)
		return
	}
	page, limit := ginutil.Pagination(c)

	result, err := h.service.Media(c.Request.Context(), eventID, c.Query("code"), mediaType, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	common.SuccessResponse(c, result.Media, &result.Meta)
}
