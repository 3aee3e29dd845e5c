package handler

import (
	"net/http"
	"time"

	"github.com/nazirsaif/nexus-sub000/internal/middleware"
	"github.com/nazirsaif/nexus-sub000/internal/model"
	"github.com/nazirsaif/nexus-sub000/internal/service"
	"github.com/nazirsaif/nexus-sub000/pkg/util"

	"github.com/gin-gonic/gin"
)

// MeetingHandler serves scheduling endpoints.
type MeetingHandler struct {
	meetings *service.MeetingService
}

func NewMeetingHandler(meetings *service.MeetingService) *MeetingHandler {
	return &MeetingHandler{meetings: meetings}
}

// Create handles POST /api/meetings
func (h *MeetingHandler) Create(c *gin.Context) {
	var req model.CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(err.Error(), ""))
		return
	}
	meeting, err := h.meetings.Create(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.NewSuccessResponse("Meeting scheduled", gin.H{"meeting": meeting}))
}

// List handles GET /api/meetings?from=&to= (RFC 3339 timestamps)
func (h *MeetingHandler) List(c *gin.Context) {
	var from, to *time.Time
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, model.NewErrorResponse("Invalid 'from' timestamp", ""))
			return
		}
		from = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, model.NewErrorResponse("Invalid 'to' timestamp", ""))
			return
		}
		to = &t
	}

	meetings, err := h.meetings.ListForUser(c.Request.Context(), middleware.UserID(c), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("OK", gin.H{"meetings": meetings}))
}

// Get handles GET /api/meetings/:id
func (h *MeetingHandler) Get(c *gin.Context) {
	id, err := util.ParseObjectID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse("Invalid meeting id", ""))
		return
	}
	meeting, err := h.meetings.Get(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("OK", gin.H{"meeting": meeting}))
}

// Update handles PUT /api/meetings/:id
func (h *MeetingHandler) Update(c *gin.Context) {
	id, err := util.ParseObjectID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse("Invalid meeting id", ""))
		return
	}
	var req model.UpdateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(err.Error(), ""))
		return
	}
	meeting, err := h.meetings.Update(c.Request.Context(), id, middleware.UserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("Meeting updated", gin.H{"meeting": meeting}))
}

// Respond handles POST /api/meetings/:id/respond
func (h *MeetingHandler) Respond(c *gin.Context) {
	id, err := util.ParseObjectID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse("Invalid meeting id", ""))
		return
	}
	var req model.RespondMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(err.Error(), ""))
		return
	}
	if err := h.meetings.Respond(c.Request.Context(), id, middleware.UserID(c), req.Response); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("Response recorded", nil))
}

// Cancel handles DELETE /api/meetings/:id
func (h *MeetingHandler) Cancel(c *gin.Context) {
	id, err := util.ParseObjectID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse("Invalid meeting id", ""))
		return
	}
	if err := h.meetings.Cancel(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("Meeting cancelled", nil))
}
