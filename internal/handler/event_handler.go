package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/neberku/neberku-backend/internal/common"
	"github.com/neberku/neberku-backend/internal/service"
)

// EventHandler guest-facing event endpoints
type EventHandler struct {
	service *service.EventService
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(service *service.EventService) *EventHandler {
	return &EventHandler{service: service}
}

// Access handles GET /api/v1/events/access?code=
// @Summary Open an event with its contributor code
// @Tags events
// @Produce json
// @Param code query string true "Contributor code"
// @Success 200 {object} common.APIResponse{data=domain.EventGuestView}
// @Failure 404 {object} common.APIResponse
// @Router /events/access [get]
func (h *EventHandler) Access(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "code is required", nil)
		return
	}

	view, err := h.service.AccessByCode(code)
	if err != nil {
		respondError(c, err)
		return
	}

	common.SuccessResponse(c, view, nil)
}

// GuestView handles GET /api/v1/events/:id/guest-view
// @Summary Public event details for guests
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} common.APIResponse{data=domain.EventGuestView}
// @Failure 403 {object} common.APIResponse
// @Router /events/{id}/guest-view [get]
func (h *EventHandler) GuestView(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid event ID", err)
		return
	}

	view, err := h.service.GuestView(eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	common.SuccessResponse(c, view, nil)
}
