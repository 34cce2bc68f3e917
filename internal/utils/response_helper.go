package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Acurioustractor/empathy-ledger-syndication/internal/errs"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/models"
)

// SendOKResponse sends a 200 OK response with the given data
func SendOKResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// SendCreatedResponse sends a 201 Created response with the given data
func SendCreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// SendNoContentResponse sends a 204 No Content response
func SendNoContentResponse(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// SendBadRequestError sends a 400 Bad Request error response
func SendBadRequestError(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Code:    models.ErrCodeBadRequest,
		Message: message,
	})
}

// SendValidationError sends a 400 Bad Request for payload validation failures
func SendValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Code:    models.ErrCodeValidationError,
		Message: err.Error(),
	})
}

// SendUnauthorizedError sends a 401 Unauthorized error response
func SendUnauthorizedError(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Code:    models.ErrCodeUnauthorized,
		Message: message,
	})
}

// SendNotFoundError sends a 404 Not Found error response
func SendNotFoundError(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, models.ErrorResponse{
		Code:    models.ErrCodeNotFound,
		Message: message,
	})
}

// SendConflictError sends a 409 Conflict error response
func SendConflictError(c *gin.Context, message string) {
	c.JSON(http.StatusConflict, models.ErrorResponse{
		Code:    models.ErrCodeConflict,
		Message: message,
	})
}

// SendInternalServerError sends a 500 Internal Server Error response
func SendInternalServerError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Code:    models.ErrCodeInternalError,
		Message: message,
	})
}

// SendServiceError maps service layer errors to HTTP responses. Unknown
// errors are logged and surfaced as a 500 without leaking internals.
func SendServiceError(c *gin.Context, logger *logrus.Logger, err error) {
	switch {
	case errors.Is(err, errs.ErrInvalidInput):
		SendBadRequestError(c, err.Error())
	case errors.Is(err, errs.ErrNotFound):
		SendNotFoundError(c, err.Error())
	case errors.Is(err, errs.ErrUnauthorized):
		SendUnauthorizedError(c, err.Error())
	case errors.Is(err, errs.ErrDuplicateConsent),
		errors.Is(err, errs.ErrInvalidStateTransition),
		errors.Is(err, errs.ErrConcurrencyConflict):
		SendConflictError(c, err.Error())
	default:
		logger.WithError(err).Error("Unhandled service error")
		SendInternalServerError(c, "internal server error")
	}
}
