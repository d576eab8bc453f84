package model

import "github.com/google/uuid"

// DoctorProfile extends a User with role=doctor. Created in the same
// transaction as its user at registration.
type DoctorProfile struct {
	Base
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	Specialization string    `json:"specialization" db:"specialization"`
	Bio            *string   `json:"bio,omitempty" db:"bio"`
}

// DoctorFilter represents doctor search parameters
type DoctorFilter struct {
	Specialization string `json:"specialization" form:"specialization"`
}
