package handler

import (
	"net/http"

	"github.com/nazirsaif/nexus-sub000/internal/middleware"
	"github.com/nazirsaif/nexus-sub000/internal/model"
	"github.com/nazirsaif/nexus-sub000/internal/service"
	"github.com/nazirsaif/nexus-sub000/pkg/util"

	"github.com/gin-gonic/gin"
)

// ProfileHandler serves extended role-specific profiles.
type ProfileHandler struct {
	profiles *service.ProfileService
}

func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Me handles GET /api/profile/me
func (h *ProfileHandler) Me(c *gin.Context) {
	profile, err := h.profiles.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("OK", gin.H{"profile": profile}))
}

// Get handles GET /api/profile/:userId
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, err := util.ParseObjectID(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse("Invalid user id", ""))
		return
	}
	profile, err := h.profiles.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("OK", gin.H{"profile": profile}))
}

// Update handles PUT /api/profile/me
func (h *ProfileHandler) Update(c *gin.Context) {
	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(err.Error(), ""))
		return
	}
	profile, err := h.profiles.Update(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("Profile updated", gin.H{"profile": profile}))
}
