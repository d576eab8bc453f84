package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
)

// ErrNotFound is returned by lookups when no row matches.
var ErrNotFound = errors.New("not found")

// ErrSlotTaken is returned by Book when the conditional claim on the
// slot finds it already booked. Exactly one of any set of concurrent
// bookers escapes this error.
var ErrSlotTaken = errors.New("slot already booked")

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	// CreateWithProfile inserts the user and its doctor profile in one
	// transaction. Either both rows exist afterwards or neither does.
	CreateWithProfile(ctx context.Context, user *model.User, profile *model.DoctorProfile) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

type DoctorRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.DoctorProfile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.DoctorProfile, error)
	List(ctx context.Context, filter *model.DoctorFilter) ([]*model.DoctorProfile, error)
}

type SlotRepository interface {
	Create(ctx context.Context, slot *model.Slot) error
	CreateBatch(ctx context.Context, slots []*model.Slot) error
	Get(ctx context.Context, id uuid.UUID) (*model.Slot, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, onlyAvailable bool) ([]*model.Slot, error)
}

type AppointmentRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error)
	// Book atomically claims the linked slot and inserts the
	// appointment. The claim flips is_booked only if currently false;
	// losers get ErrSlotTaken and no appointment row.
	Book(ctx context.Context, appointment *model.Appointment) error
	// Cancel atomically deletes the appointment and releases its slot,
	// if any.
	Cancel(ctx context.Context, appointment *model.Appointment) error
}
