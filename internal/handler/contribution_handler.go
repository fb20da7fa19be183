package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/neberku/neberku-backend/internal/common"
	"github.com/neberku/neberku-backend/internal/domain"
	"github.com/neberku/neberku-backend/internal/service"
)

// multipart field per media kind
var uploadFields = map[domain.MediaType]string{
	domain.MediaPhoto: "photos",
	domain.MediaVideo: "videos",
	domain.MediaVoice: "voice_recordings",
}

// ContributionHandler handles guest submissions
type ContributionHandler struct {
	service *service.ContributionService
}

// NewContributionHandler creates a new ContributionHandler
func NewContributionHandler(service *service.ContributionService) *ContributionHandler {
	return &ContributionHandler{service: service}
}

// Create handles POST /api/v1/guest-posts
// @Summary Submit a guest post with optional media
// @Tags contributions
// @Accept multipart/form-data
// @Produce json
// @Param event formData string true "Event ID"
// @Param guest_name formData string true "Guest name"
// @Param guest_phone formData string true "Guest phone"
// @Param wish_text formData string true "Wish"
// @Param photos formData file false "Photos"
// @Param videos formData file false "Videos"
// @Param voice_recordings formData file false "Voice recordings"
// @Success 201 {object} common.APIResponse{data=domain.GuestPostResponse}
// @Failure 400 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Failure 413 {object} common.APIResponse
// @Router /guest-posts [post]
func (h *ContributionHandler) Create(c *gin.Context) {
	form, err := c.MultipartForm()
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		common.ErrorResponse(c, http.StatusRequestEntityTooLarge, "Upload is too large", err)
		return
	case err != nil && !errors.Is(err, http.ErrNotMultipart):
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid multipart form", err)
		return
	}

	eventID, err := uuid.Parse(c.PostForm("event"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "event must be a valid event ID.", err)
		return
	}

	req := &service.ContributionRequest{
		EventID:    eventID,
		GuestName:  c.PostForm("guest_name"),
		GuestPhone: c.PostForm("guest_phone"),
		WishText:   c.PostForm("wish_text"),
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	}
	if form != nil {
		for _, kind := range domain.MediaTypes {
			for _, fh := range form.File[uploadFields[kind]] {
				req.Files = append(req.Files, uploadFromHeader(kind, fh))
			}
		}
	}

	post, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	common.CreatedResponse(c, post.ToResponse(true))
}

func uploadFromHeader(kind domain.MediaType, fh *multipart.FileHeader) service.Upload {
	return service.Upload{
		MediaType:   kind,
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// Allowance handles GET /api/v1/events/:id/allowance?phone=
// @Summary Remaining media quota of a guest
// @Tags contributions
// @Produce json
// @Param id path string true "Event ID"
// @Param phone query string true "Guest phone"
// @Success 200 {object} common.APIResponse{data=quota.Allowance}
// @Router /events/{id}/allowance [get]
func (h *ContributionHandler) Allowance(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid event ID", err)
		return
	}
	phone := c.Query("phone")
	if phone == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "phone is required", nil)
		return
	}

	allowance, err := h.service.Allowance(eventID, phone)
	if err != nil {
		respondError(c, err)
		return
	}

	common.SuccessResponse(c, allowance, nil)
}
