package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

type Service struct {
	doctorRepo repository.DoctorRepository
	slotRepo   repository.SlotRepository
	metrics    *metrics.Metrics
}

func NewService(doctorRepo repository.DoctorRepository, slotRepo repository.SlotRepository, m *metrics.Metrics) *Service {
	return &Service{
		doctorRepo: doctorRepo,
		slotRepo:   slotRepo,
		metrics:    m,
	}
}

// GenerateSlots slices [start, end) into contiguous slots of
// model.SlotDuration starting at start. A trailing remainder shorter
// than one duration is dropped, never padded. Pure: persistence is the
// caller's job.
func GenerateSlots(doctorID uuid.UUID, start, end time.Time) ([]*model.Slot, error) {
	if !start.Before(end) {
		return nil, apperrors.InvalidRange("end time must be after start time")
	}

	var slots []*model.Slot
	for current := start; ; current = current.Add(model.SlotDuration) {
		slotEnd := current.Add(model.SlotDuration)
		if slotEnd.After(end) {
			break
		}
		slots = append(slots, &model.Slot{
			DoctorID:  doctorID,
			StartTime: current,
			EndTime:   &slotEnd,
			IsBooked:  false,
		})
	}
	return slots, nil
}

// CreateWindow persists the slots generated from an availability
// window. Only the profile owner may publish availability. No overlap
// check is run against existing slots on this path.
func (s *Service) CreateWindow(ctx context.Context, caller *model.Caller, doctorID uuid.UUID, start, end time.Time) ([]*model.Slot, error) {
	if _, err := s.ownedProfile(ctx, caller, doctorID); err != nil {
		return nil, err
	}

	slots, err := GenerateSlots(doctorID, start, end)
	if err != nil {
		return nil, err
	}

	if len(slots) > 0 {
		if err := s.slotRepo.CreateBatch(ctx, slots); err != nil {
			return nil, apperrors.Internal(err)
		}
	}

	if s.metrics != nil {
		s.metrics.SlotsGenerated.Add(float64(len(slots)))
	}
	return slots, nil
}

// CreateSlot persists one explicit slot after scanning the doctor's
// unbooked slots for overlap with [start, end). Open-ended slots on
// either side never conflict.
func (s *Service) CreateSlot(ctx context.Context, caller *model.Caller, doctorID uuid.UUID, req *model.CreateSlotRequest) (*model.Slot, error) {
	if _, err := s.ownedProfile(ctx, caller, doctorID); err != nil {
		return nil, err
	}

	if req.EndTime != nil && !req.EndTime.After(req.StartTime) {
		return nil, apperrors.InvalidRange("end time must be after start time")
	}

	existing, err := s.slotRepo.ListByDoctor(ctx, doctorID, true)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	for _, other := range existing {
		if other.EndTime == nil || req.EndTime == nil {
			continue
		}
		if req.StartTime.Before(*other.EndTime) && req.EndTime.After(other.StartTime) {
			return nil, apperrors.SlotConflict(other.StartTime)
		}
	}

	slot := &model.Slot{
		DoctorID:  doctorID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		IsBooked:  false,
	}
	if err := s.slotRepo.Create(ctx, slot); err != nil {
		return nil, apperrors.Internal(err)
	}
	return slot, nil
}

// ListSlots returns a doctor's slots, optionally restricted to
// unbooked ones.
func (s *Service) ListSlots(ctx context.Context, doctorID uuid.UUID, onlyAvailable bool) ([]*model.Slot, error) {
	slots, err := s.slotRepo.ListByDoctor(ctx, doctorID, onlyAvailable)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return slots, nil
}

func (s *Service) ownedProfile(ctx context.Context, caller *model.Caller, doctorID uuid.UUID) (*model.DoctorProfile, error) {
	profile, err := s.doctorRepo.Get(ctx, doctorID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Forbidden("you can only add slots for your own profile")
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if profile.UserID != caller.ID {
		return nil, apperrors.Forbidden("you can only add slots for your own profile")
	}
	return profile, nil
}
