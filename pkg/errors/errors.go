package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode identifies a domain failure kind. Every error a service
// returns carries one of these so handlers can map it to a status.
type ErrorCode int

const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal

	// Booking domain codes
	ErrInvalidRange
	ErrSlotConflict
	ErrSlotNotFound
	ErrDoctorNotFound
	ErrSlotOwnershipMismatch
	ErrSlotAlreadyBooked
	ErrAppointmentNotFound
	ErrTooLateToCancel

	// Auth domain codes
	ErrEmailTaken
	ErrPasswordTooLong
	ErrInvalidCredentials
	ErrUnauthenticated
)

// AppError represents an application error
type AppError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// CodeOf returns the error code of err, or ErrInternal when err does
// not wrap an AppError.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Message: message,
	}
}

func InvalidRange(message string) *AppError {
	return &AppError{
		Code:    ErrInvalidRange,
		Message: message,
	}
}

// SlotConflict names the start time of the slot the new one overlaps.
func SlotConflict(existingStart time.Time) *AppError {
	return &AppError{
		Code:    ErrSlotConflict,
		Message: fmt.Sprintf("slot overlaps with existing slot at %s", existingStart.Format("03:04 PM")),
		Details: map[string]interface{}{
			"conflicting_start": existingStart,
		},
	}
}

func SlotNotFound(err error) *AppError {
	return &AppError{
		Code:    ErrSlotNotFound,
		Message: "slot not found",
		Err:     err,
	}
}

func DoctorNotFound(err error) *AppError {
	return &AppError{
		Code:    ErrDoctorNotFound,
		Message: "doctor not found",
		Err:     err,
	}
}

func SlotOwnershipMismatch() *AppError {
	return &AppError{
		Code:    ErrSlotOwnershipMismatch,
		Message: "slot does not belong to this doctor",
	}
}

func SlotAlreadyBooked() *AppError {
	return &AppError{
		Code:    ErrSlotAlreadyBooked,
		Message: "slot already booked",
	}
}

func AppointmentNotFound(err error) *AppError {
	return &AppError{
		Code:    ErrAppointmentNotFound,
		Message: "appointment not found",
		Err:     err,
	}
}

// TooLateToCancel carries the remaining hours until the slot starts.
func TooLateToCancel(hoursUntil float64) *AppError {
	return &AppError{
		Code:    ErrTooLateToCancel,
		Message: fmt.Sprintf("appointments can only be cancelled more than 10 hours in advance; yours is in %.1f hours", hoursUntil),
		Details: map[string]interface{}{
			"hours_until": hoursUntil,
		},
	}
}

func EmailTaken() *AppError {
	return &AppError{
		Code:    ErrEmailTaken,
		Message: "email already registered",
	}
}

func PasswordTooLong() *AppError {
	return &AppError{
		Code:    ErrPasswordTooLong,
		Message: "password is too long (bcrypt supports max 72 bytes)",
	}
}

func InvalidCredentials() *AppError {
	return &AppError{
		Code:    ErrInvalidCredentials,
		Message: "invalid credentials",
	}
}

func Unauthenticated(message string) *AppError {
	return &AppError{
		Code:    ErrUnauthenticated,
		Message: message,
	}
}
