package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/messaging"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

// CancelNoticeWindow is the minimum lead time before a slot's start
// required for a patient to cancel.
const CancelNoticeWindow = 10 * time.Hour

// Event is the payload published on booking lifecycle channels.
type Event struct {
	AppointmentID uuid.UUID  `json:"appointment_id"`
	DoctorID      uuid.UUID  `json:"doctor_id"`
	PatientID     uuid.UUID  `json:"patient_id"`
	SlotID        *uuid.UUID `json:"slot_id,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

type Service struct {
	doctorRepo      repository.DoctorRepository
	slotRepo        repository.SlotRepository
	appointmentRepo repository.AppointmentRepository
	broker          messaging.Broker
	metrics         *metrics.Metrics
	logger          *zerolog.Logger
}

func NewService(
	doctorRepo repository.DoctorRepository,
	slotRepo repository.SlotRepository,
	appointmentRepo repository.AppointmentRepository,
	broker messaging.Broker,
	m *metrics.Metrics,
	logger *zerolog.Logger,
) *Service {
	return &Service{
		doctorRepo:      doctorRepo,
		slotRepo:        slotRepo,
		appointmentRepo: appointmentRepo,
		broker:          broker,
		metrics:         m,
		logger:          logger,
	}
}

// Book claims the slot and creates the appointment as one atomic unit.
// The repository's conditional claim guarantees that of any number of
// concurrent bookers on the same slot, exactly one succeeds and the
// rest observe SlotAlreadyBooked.
func (s *Service) Book(ctx context.Context, caller *model.Caller, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	if caller.Role != model.RolePatient {
		return nil, apperrors.Forbidden("only patients can book appointments")
	}

	doctor, err := s.doctorRepo.Get(ctx, req.DoctorID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.DoctorNotFound(err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	slot, err := s.slotRepo.Get(ctx, req.SlotID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.SlotNotFound(err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if slot.DoctorID != doctor.ID {
		return nil, apperrors.SlotOwnershipMismatch()
	}
	if slot.IsBooked {
		return nil, apperrors.SlotAlreadyBooked()
	}

	appointment := &model.Appointment{
		DoctorID:  doctor.ID,
		PatientID: caller.ID,
		SlotID:    &slot.ID,
	}
	if req.Reason != "" {
		reason := req.Reason
		appointment.Reason = &reason
	}

	var timer *prometheus.Timer
	if s.metrics != nil {
		timer = prometheus.NewTimer(s.metrics.BookingDuration)
	}
	err = s.appointmentRepo.Book(ctx, appointment)
	if timer != nil {
		timer.ObserveDuration()
	}

	if errors.Is(err, repository.ErrSlotTaken) {
		if s.metrics != nil {
			s.metrics.BookingConflicts.Inc()
		}
		return nil, apperrors.SlotAlreadyBooked()
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.SlotNotFound(err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if s.metrics != nil {
		s.metrics.BookingsTotal.Inc()
	}
	s.publish(ctx, messaging.ChannelAppointmentBooked, appointment)

	return appointment, nil
}

// Cancel deletes the appointment and releases its slot. Patients may
// cancel only their own appointments and only while the slot start is
// more than CancelNoticeWindow away; doctors may cancel any
// appointment on their own profile at any time.
func (s *Service) Cancel(ctx context.Context, caller *model.Caller, appointmentID uuid.UUID) error {
	appointment, err := s.appointmentRepo.Get(ctx, appointmentID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.AppointmentNotFound(err)
	}
	if err != nil {
		return apperrors.Internal(err)
	}

	switch caller.Role {
	case model.RolePatient:
		if appointment.PatientID != caller.ID {
			return apperrors.Forbidden("not authorized to cancel this appointment")
		}
		if err := s.checkNoticeWindow(ctx, appointment); err != nil {
			return err
		}
	case model.RoleDoctor:
		profile, err := s.doctorRepo.GetByUserID(ctx, caller.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.Forbidden("not authorized to cancel this appointment")
		}
		if err != nil {
			return apperrors.Internal(err)
		}
		if appointment.DoctorID != profile.ID {
			return apperrors.Forbidden("not authorized to cancel this appointment")
		}
	default:
		return apperrors.Forbidden("not authorized to cancel this appointment")
	}

	if err := s.appointmentRepo.Cancel(ctx, appointment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.AppointmentNotFound(err)
		}
		return apperrors.Internal(err)
	}

	if s.metrics != nil {
		s.metrics.CancellationsTotal.Inc()
	}
	s.publish(ctx, messaging.ChannelAppointmentCancelled, appointment)

	return nil
}

// ListFor derives the caller's appointment listing. A doctor caller
// without a profile gets an empty result, not an error.
func (s *Service) ListFor(ctx context.Context, caller *model.Caller) ([]*model.Appointment, error) {
	switch caller.Role {
	case model.RolePatient:
		appointments, err := s.appointmentRepo.ListByPatient(ctx, caller.ID)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		return appointments, nil
	case model.RoleDoctor:
		profile, err := s.doctorRepo.GetByUserID(ctx, caller.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return []*model.Appointment{}, nil
		}
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		appointments, err := s.appointmentRepo.ListByDoctor(ctx, profile.ID)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		return appointments, nil
	default:
		return []*model.Appointment{}, nil
	}
}

func (s *Service) checkNoticeWindow(ctx context.Context, appointment *model.Appointment) error {
	if appointment.SlotID == nil {
		return nil
	}

	slot, err := s.slotRepo.Get(ctx, *appointment.SlotID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.Internal(err)
	}

	// Stored times are UTC; naive values are read as UTC.
	remaining := slot.StartTime.Sub(time.Now().UTC())
	if remaining <= CancelNoticeWindow {
		if s.metrics != nil {
			s.metrics.CancellationsRejected.Inc()
		}
		return apperrors.TooLateToCancel(remaining.Hours())
	}
	return nil
}

func (s *Service) publish(ctx context.Context, channel string, appointment *model.Appointment) {
	if s.broker == nil {
		return
	}
	event := Event{
		AppointmentID: appointment.ID,
		DoctorID:      appointment.DoctorID,
		PatientID:     appointment.PatientID,
		SlotID:        appointment.SlotID,
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.broker.Publish(ctx, channel, event); err != nil && s.logger != nil {
		s.logger.Warn().Err(err).Str("channel", channel).Msg("failed to publish booking event")
	}
}
