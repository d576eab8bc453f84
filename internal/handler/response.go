package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// Error writes a domain error with its mapped status code.
func Error(c *gin.Context, err error) {
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		c.JSON(http.StatusInternalServerError, NewErrorResponse("internal server error"))
		return
	}

	resp := &Response{
		Status:  "error",
		Message: appErr.Message,
		Data:    nil,
	}
	if len(appErr.Details) > 0 {
		resp.Data = appErr.Details
	}
	c.JSON(StatusFor(appErr.Code), resp)
}

// StatusFor maps a domain error code to an HTTP status.
func StatusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrBadRequest, apperrors.ErrInvalidRange, apperrors.ErrEmailTaken:
		return http.StatusBadRequest
	case apperrors.ErrUnauthorized, apperrors.ErrUnauthenticated, apperrors.ErrInvalidCredentials:
		return http.StatusUnauthorized
	case apperrors.ErrForbidden, apperrors.ErrSlotOwnershipMismatch:
		return http.StatusForbidden
	case apperrors.ErrNotFound, apperrors.ErrDoctorNotFound, apperrors.ErrSlotNotFound, apperrors.ErrAppointmentNotFound:
		return http.StatusNotFound
	case apperrors.ErrSlotConflict, apperrors.ErrSlotAlreadyBooked, apperrors.ErrTooLateToCancel:
		return http.StatusConflict
	case apperrors.ErrPasswordTooLong:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
