package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

func newTestService(t *testing.T) (*Service, *memory.Store, *model.Caller, uuid.UUID) {
	t.Helper()

	store := memory.NewStore()
	userRepo := memory.NewUserRepository(store)
	doctorRepo := memory.NewDoctorRepository(store)
	slotRepo := memory.NewSlotRepository(store)

	user := &model.User{Email: "doc@example.com", FullName: "Dr Who", Role: model.RoleDoctor}
	profile := &model.DoctorProfile{Specialization: "Cardiology"}
	require.NoError(t, userRepo.CreateWithProfile(context.Background(), user, profile))

	caller := &model.Caller{ID: user.ID, Role: model.RoleDoctor}
	svc := NewService(doctorRepo, slotRepo, nil)
	return svc, store, caller, profile.ID
}

func TestGenerateSlots(t *testing.T) {
	doctorID := uuid.New()
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	t.Run("one hour window yields three slots", func(t *testing.T) {
		slots, err := GenerateSlots(doctorID, start, start.Add(time.Hour))
		require.NoError(t, err)
		require.Len(t, slots, 3)

		for i, slot := range slots {
			expectedStart := start.Add(time.Duration(i) * model.SlotDuration)
			assert.True(t, slot.StartTime.Equal(expectedStart))
			require.NotNil(t, slot.EndTime)
			assert.True(t, slot.EndTime.Equal(expectedStart.Add(model.SlotDuration)))
			assert.False(t, slot.IsBooked)
			assert.Equal(t, doctorID, slot.DoctorID)
		}
	})

	t.Run("trailing remainder is dropped", func(t *testing.T) {
		slots, err := GenerateSlots(doctorID, start, start.Add(50*time.Minute))
		require.NoError(t, err)
		assert.Len(t, slots, 2)
	})

	t.Run("window shorter than one slot yields nothing", func(t *testing.T) {
		slots, err := GenerateSlots(doctorID, start, start.Add(15*time.Minute))
		require.NoError(t, err)
		assert.Empty(t, slots)
	})

	t.Run("slots are contiguous and non-overlapping", func(t *testing.T) {
		slots, err := GenerateSlots(doctorID, start, start.Add(3*time.Hour))
		require.NoError(t, err)
		require.Len(t, slots, 9)
		for i := 1; i < len(slots); i++ {
			assert.True(t, slots[i].StartTime.Equal(*slots[i-1].EndTime))
		}
	})

	t.Run("start must precede end", func(t *testing.T) {
		_, err := GenerateSlots(doctorID, start, start)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidRange))

		_, err = GenerateSlots(doctorID, start, start.Add(-time.Hour))
		assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidRange))
	})
}

func TestCreateWindow(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	t.Run("persists generated slots", func(t *testing.T) {
		svc, store, caller, doctorID := newTestService(t)
		slots, err := svc.CreateWindow(ctx, caller, doctorID, start, start.Add(time.Hour))
		require.NoError(t, err)
		assert.Len(t, slots, 3)

		stored, err := memory.NewSlotRepository(store).ListByDoctor(ctx, doctorID, false)
		require.NoError(t, err)
		assert.Len(t, stored, 3)
	})

	t.Run("only the profile owner may publish availability", func(t *testing.T) {
		svc, _, _, doctorID := newTestService(t)
		stranger := &model.Caller{ID: uuid.New(), Role: model.RoleDoctor}
		_, err := svc.CreateWindow(ctx, stranger, doctorID, start, start.Add(time.Hour))
		assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))
	})

	t.Run("unknown doctor is forbidden", func(t *testing.T) {
		svc, _, caller, _ := newTestService(t)
		_, err := svc.CreateWindow(ctx, caller, uuid.New(), start, start.Add(time.Hour))
		assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))
	})

	t.Run("invalid range is rejected before persisting", func(t *testing.T) {
		svc, store, caller, doctorID := newTestService(t)
		_, err := svc.CreateWindow(ctx, caller, doctorID, start, start)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidRange))

		stored, err := memory.NewSlotRepository(store).ListByDoctor(ctx, doctorID, false)
		require.NoError(t, err)
		assert.Empty(t, stored)
	})
}

func TestCreateSlot(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	createSlot := func(t *testing.T, store *memory.Store, doctorID uuid.UUID, slot *model.Slot) {
		t.Helper()
		slot.DoctorID = doctorID
		require.NoError(t, memory.NewSlotRepository(store).Create(ctx, slot))
	}

	t.Run("rejects end before start", func(t *testing.T) {
		svc, _, caller, doctorID := newTestService(t)
		end := start.Add(-time.Minute)
		_, err := svc.CreateSlot(ctx, caller, doctorID, &model.CreateSlotRequest{StartTime: start, EndTime: &end})
		assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidRange))
	})

	t.Run("rejects overlap with existing unbooked slot", func(t *testing.T) {
		svc, store, caller, doctorID := newTestService(t)
		existingEnd := start.Add(model.SlotDuration)
		createSlot(t, store, doctorID, &model.Slot{StartTime: start, EndTime: &existingEnd})

		newStart := start.Add(10 * time.Minute)
		newEnd := newStart.Add(model.SlotDuration)
		_, err := svc.CreateSlot(ctx, caller, doctorID, &model.CreateSlotRequest{StartTime: newStart, EndTime: &newEnd})
		require.True(t, apperrors.IsCode(err, apperrors.ErrSlotConflict))

		appErr := err.(*apperrors.AppError)
		assert.Equal(t, start, appErr.Details["conflicting_start"])
	})

	t.Run("booked slots do not block new slots", func(t *testing.T) {
		svc, store, caller, doctorID := newTestService(t)
		existingEnd := start.Add(model.SlotDuration)
		createSlot(t, store, doctorID, &model.Slot{StartTime: start, EndTime: &existingEnd, IsBooked: true})

		newEnd := start.Add(model.SlotDuration)
		slot, err := svc.CreateSlot(ctx, caller, doctorID, &model.CreateSlotRequest{StartTime: start, EndTime: &newEnd})
		require.NoError(t, err)
		assert.False(t, slot.IsBooked)
	})

	t.Run("open-ended slots never conflict", func(t *testing.T) {
		svc, store, caller, doctorID := newTestService(t)
		createSlot(t, store, doctorID, &model.Slot{StartTime: start})

		newEnd := start.Add(model.SlotDuration)
		_, err := svc.CreateSlot(ctx, caller, doctorID, &model.CreateSlotRequest{StartTime: start, EndTime: &newEnd})
		require.NoError(t, err)

		_, err = svc.CreateSlot(ctx, caller, doctorID, &model.CreateSlotRequest{StartTime: start})
		require.NoError(t, err)
	})

	t.Run("adjacent slots do not conflict", func(t *testing.T) {
		svc, store, caller, doctorID := newTestService(t)
		existingEnd := start.Add(model.SlotDuration)
		createSlot(t, store, doctorID, &model.Slot{StartTime: start, EndTime: &existingEnd})

		newStart := existingEnd
		newEnd := newStart.Add(model.SlotDuration)
		_, err := svc.CreateSlot(ctx, caller, doctorID, &model.CreateSlotRequest{StartTime: newStart, EndTime: &newEnd})
		assert.NoError(t, err)
	})
}

func TestListSlots(t *testing.T) {
	ctx := context.Background()
	svc, store, _, doctorID := newTestService(t)
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	slotRepo := memory.NewSlotRepository(store)
	end1 := start.Add(model.SlotDuration)
	require.NoError(t, slotRepo.Create(ctx, &model.Slot{DoctorID: doctorID, StartTime: start, EndTime: &end1}))
	end2 := end1.Add(model.SlotDuration)
	require.NoError(t, slotRepo.Create(ctx, &model.Slot{DoctorID: doctorID, StartTime: end1, EndTime: &end2, IsBooked: true}))

	available, err := svc.ListSlots(ctx, doctorID, true)
	require.NoError(t, err)
	assert.Len(t, available, 1)
	assert.False(t, available[0].IsBooked)

	all, err := svc.ListSlots(ctx, doctorID, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
