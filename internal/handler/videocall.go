package handler

import (
	"net/http"

	"github.com/nazirsaif/nexus-sub000/internal/middleware"
	"github.com/nazirsaif/nexus-sub000/internal/model"
	"github.com/nazirsaif/nexus-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// VideoCallHandler serves call-room management endpoints.
type VideoCallHandler struct {
	calls *service.VideoCallService
}

func NewVideoCallHandler(calls *service.VideoCallService) *VideoCallHandler {
	return &VideoCallHandler{calls: calls}
}

// Create handles POST /api/video-calls
func (h *VideoCallHandler) Create(c *gin.Context) {
	var req model.CreateCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(err.Error(), ""))
		return
	}
	call, err := h.calls.Create(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.NewSuccessResponse("Call room created", gin.H{"call": call}))
}

// List handles GET /api/video-calls
func (h *VideoCallHandler) List(c *gin.Context) {
	calls, err := h.calls.ListForUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("OK", gin.H{"calls": calls}))
}

// Get handles GET /api/video-calls/:id
func (h *VideoCallHandler) Get(c *gin.Context) {
	call, err := h.calls.Get(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("OK", gin.H{"call": call}))
}

// End handles DELETE /api/video-calls/:id
func (h *VideoCallHandler) End(c *gin.Context) {
	if err := h.calls.End(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("Call ended", nil))
}
