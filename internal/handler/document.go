package handler

import (
	"net/http"

	"github.com/nazirsaif/nexus-sub000/internal/middleware"
	"github.com/nazirsaif/nexus-sub000/internal/model"
	"github.com/nazirsaif/nexus-sub000/internal/service"
	"github.com/nazirsaif/nexus-sub000/pkg/util"

	"github.com/gin-gonic/gin"
)

// DocumentHandler serves upload, sharing and e-signature endpoints.
type DocumentHandler struct {
	docs *service.DocumentService
}

func NewDocumentHandler(docs *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{docs: docs}
}

// Upload handles POST /api/documents (multipart form, field "file").
func (h *DocumentHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse("Missing file upload", ""))
		return
	}
	doc, err := h.docs.Upload(c.Request.Context(), middleware.UserID(c), c.PostForm("title"), header)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.NewSuccessResponse("Document uploaded", gin.H{"document": doc}))
}

// List handles GET /api/documents
func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.docs.ListForUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("OK", gin.H{"documents": docs}))
}

// Get handles GET /api/documents/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	id, err := util.ParseObjectID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse("Invalid document id", ""))
		return
	}
	doc, err := h.docs.Get(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("OK", gin.H{"document": doc}))
}

// Download handles GET /api/documents/:id/download
func (h *DocumentHandler) Download(c *gin.Context) {
	id, err := util.ParseObjectID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse("Invalid document id", ""))
		return
	}
	path, doc, err := h.docs.FilePath(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, doc.OriginalName)
}

// Share handles POST /api/documents/:id/share
func (h *DocumentHandler) Share(c *gin.Context) {
	id, err := util.ParseObjectID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse("Invalid document id", ""))
		return
	}
	var req model.ShareDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(err.Error(), ""))
		return
	}
	if err := h.docs.Share(c.Request.Context(), id, middleware.UserID(c), &req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("Document shared", nil))
}

// Unshare handles DELETE /api/documents/:id/share/:userId
func (h *DocumentHandler) Unshare(c *gin.Context) {
	id, err := util.ParseObjectID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse("Invalid document id", ""))
		return
	}
	targetID, err := util.ParseObjectID(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse("Invalid user id", ""))
		return
	}
	if err := h.docs.Unshare(c.Request.Context(), id, middleware.UserID(c), targetID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("Sharing revoked", nil))
}

// Sign handles POST /api/documents/:id/sign
func (h *DocumentHandler) Sign(c *gin.Context) {
	id, err := util.ParseObjectID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse("Invalid document id", ""))
		return
	}
	var req model.SignDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(err.Error(), ""))
		return
	}
	doc, err := h.docs.Sign(c.Request.Context(), id, middleware.UserID(c), req.ImageData)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("Document signed", gin.H{"document": doc}))
}

// Delete handles DELETE /api/documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, err := util.ParseObjectID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse("Invalid document id", ""))
		return
	}
	if err := h.docs.Delete(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("Document deleted", nil))
}
