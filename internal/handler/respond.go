package handler

import (
	"errors"
	"net/http"

	"github.com/nazirsaif/nexus-sub000/internal/model"
	"github.com/nazirsaif/nexus-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondError maps service errors onto the HTTP status space and writes the
// JSON envelope.
func respondError(c *gin.Context, err error) {
	var conflict *service.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, model.Response{
			Success: false,
			Message: conflict.Error(),
			Data:    gin.H{"conflicts": conflict.Conflicts},
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrOTPExpired),
		errors.Is(err, service.ErrOTPAttemptsExceeded):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrInsufficientFunds):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
		c.JSON(status, model.NewErrorResponse("Internal server error", ""))
		return
	}
	c.JSON(status, model.NewErrorResponse(err.Error(), ""))
}
