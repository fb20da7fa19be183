package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/neberku/neberku-backend/internal/common"
	"github.com/neberku/neberku-backend/internal/middleware"
	"github.com/neberku/neberku-backend/internal/service"
	"github.com/neberku/neberku-backend/pkg/ginutil"
)

// ModerationHandler host moderation of guest content
type ModerationHandler struct {
	service *service.ModerationService
}

// NewModerationHandler creates a new ModerationHandler
func NewModerationHandler(service *service.ModerationService) *ModerationHandler {
	return &ModerationHandler{service: service}
}

// ListPosts handles GET /api/v1/host/events/:id/posts
// @Summary All guest posts of the host's event
// @Tags moderation
// @Security BearerAuth
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} common.APIResponse{data=[]domain.GuestPostResponse}
// @Router /host/events/{id}/posts [get]
func (h *ModerationHandler) ListPosts(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid event ID", err)
		return
	}
	page, limit := ginutil.Pagination(c)

	result, err := h.service.ListPosts(middleware.GetUserID(c), eventID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	common.SuccessResponse(c, result.Posts, &result.Meta)
}

// ApprovePost handles POST /api/v1/host/posts/:id/approve
// @Summary Approve a post and its media
// @Tags moderation
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} common.APIResponse{data=domain.GuestPostResponse}
// @Router /host/posts/{id}/approve [post]
func (h *ModerationHandler) ApprovePost(c *gin.Context) {
	h.setPostApproval(c, true)
}

// RejectPost handles POST /api/v1/host/posts/:id/reject
// @Summary Reject a post and its media
// @Tags moderation
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} common.APIResponse{data=domain.GuestPostResponse}
// @Router /host/posts/{id}/reject [post]
func (h *ModerationHandler) RejectPost(c *gin.Context) {
	h.setPostApproval(c, false)
}

func (h *ModerationHandler) setPostApproval(c *gin.Context, approved bool) {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid post ID", err)
		return
	}

	post, err := h.service.SetPostApproval(c.Request.Context(), middleware.GetUserID(c), postID, approved)
	if err != nil {
		respondError(c, err)
		return
	}

	common.SuccessResponse(c, post, nil)
}

// ApproveMedia handles POST /api/v1/host/media/:id/approve
// @Summary Approve one media file
// @Tags moderation
// @Security BearerAuth
// @Param id path string true "Media ID"
// @Success 200 {object} common.APIResponse{data=domain.MediaFile}
// @Failure 409 {object} common.APIResponse
// @Router /host/media/{id}/approve [post]
func (h *ModerationHandler) ApproveMedia(c *gin.Context) {
	h.setMediaApproval(c, true)
}

// RejectMedia handles POST /api/v1/host/media/:id/reject
// @Summary Reject one media file
// @Tags moderation
// @Security BearerAuth
// @Param id path string true "Media ID"
// @Success 200 {object} common.APIResponse{data=domain.MediaFile}
// @Router /host/media/{id}/reject [post]
func (h *ModerationHandler) RejectMedia(c *gin.Context) {
	h.setMediaApproval(c, false)
}

func (h *ModerationHandler) setMediaApproval(c *gin.Context, approved bool) {
	mediaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid media ID", err)
		return
	}

	file, err := h.service.SetMediaApproval(c.Request.Context(), middleware.GetUserID(c), mediaID, approved)
	if err != nil {
		respondError(c, err)
		return
	}

	common.SuccessResponse(c, file, nil)
}
