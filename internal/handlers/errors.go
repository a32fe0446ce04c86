package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"freelance-backend/internal/middleware"
	"freelance-backend/internal/models"
	"freelance-backend/internal/services"
)

var kindStatus = map[services.Kind]int{
	services.KindValidation:          http.StatusBadRequest,
	services.KindIllegalTransition:   http.StatusConflict,
	services.KindInvalidReference:    http.StatusNotFound,
	services.KindPermissionDenied:    http.StatusForbidden,
	services.KindConstraintViolation: http.StatusConflict,
	services.KindExternalService:     http.StatusBadRequest,
}

// writeError renders a service failure. Errors without a kind are internal.
func writeError(c *gin.Context, err error) {
	var se *services.Error
	if errors.As(err, &se) {
		status, ok := kindStatus[se.Kind]
		if !ok {
			status = http.StatusBadRequest
		}
		c.JSON(status, models.ErrorResponse{Error: se.Message, Code: string(se.Kind)})
		return
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal server error",
		Message: err.Error(),
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "invalid request",
		Message: err.Error(),
		Code:    string(services.KindValidation),
	})
}

// identity returns the caller, writing a 401 if the auth middleware did not run.
func identity(c *gin.Context) (services.Identity, bool) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
	}
	return id, ok
}

// pathID parses a uuid path parameter, writing a 404 if it is malformed.
func pathID(c *gin.Context, param, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		writeError(c, services.NewInvalidReferenceError("%s not found", what))
		return uuid.Nil, false
	}
	return id, true
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return time.Time{}, services.NewValidationError("%s must be a date in YYYY-MM-DD format", field)
	}
	return t, nil
}
