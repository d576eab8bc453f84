package model

import (
	"time"

	"github.com/google/uuid"
)

// Appointment links one doctor, one patient and at most one slot. It is
// created only by the booking service and hard-deleted on cancellation.
type Appointment struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	DoctorID  uuid.UUID  `json:"doctor_id" db:"doctor_id"`
	PatientID uuid.UUID  `json:"patient_id" db:"patient_id"`
	SlotID    *uuid.UUID `json:"slot_id" db:"slot_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	Reason    *string    `json:"reason,omitempty" db:"reason"`
}

// BookAppointmentRequest represents booking parameters
type BookAppointmentRequest struct {
	DoctorID uuid.UUID `json:"doctor_id" binding:"required"`
	SlotID   uuid.UUID `json:"slot_id" binding:"required"`
	Reason   string    `json:"reason" binding:"max=1000"`
}
