package handler

import (
	"net/http"
	"strconv"

	"github.com/nazirsaif/nexus-sub000/internal/model"
	"github.com/nazirsaif/nexus-sub000/internal/service"
	"github.com/nazirsaif/nexus-sub000/pkg/util"

	"github.com/gin-gonic/gin"
)

// UserHandler exposes counterpart discovery endpoints.
type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// pageParams reads ?page= and ?pageSize= with service-side clamping.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "0"))
	return page, pageSize
}

// List handles GET /api/users?role=&page=&pageSize=
func (h *UserHandler) List(c *gin.Context) {
	role := c.Query("role")
	if role != "" && !model.ValidRole(role) {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse("Invalid role filter", ""))
		return
	}

	page, pageSize := pageParams(c)
	users, err := h.users.List(c.Request.Context(), role, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("OK", gin.H{"users": users}))
}

// Get handles GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, err := util.ParseObjectID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse("Invalid user id", ""))
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("OK", gin.H{"user": user}))
}
