package model

import (
	"time"

	"github.com/google/uuid"
)

// SlotDuration is the fixed length of a generated bookable slot.
const SlotDuration = 20 * time.Minute

// Slot is an atomic bookable time unit owned by one doctor. Slots are
// never deleted when an appointment is cancelled, only the IsBooked
// flag flips back.
type Slot struct {
	Base
	DoctorID  uuid.UUID  `json:"doctor_id" db:"doctor_id"`
	StartTime time.Time  `json:"start_time" db:"start_time"`
	EndTime   *time.Time `json:"end_time" db:"end_time"`
	IsBooked  bool       `json:"is_booked" db:"is_booked"`
}

// CreateSlotRequest creates a single explicit slot. EndTime may be
// omitted for an open-ended slot.
type CreateSlotRequest struct {
	StartTime time.Time  `json:"start_time" binding:"required"`
	EndTime   *time.Time `json:"end_time"`
}

// CreateWindowRequest declares an availability window that is sliced
// into fixed-duration slots.
type CreateWindowRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

// SlotFilter represents slot listing parameters
type SlotFilter struct {
	OnlyAvailable bool `form:"only_available,default=true"`
}
