package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

type fixture struct {
	svc       *Service
	store     *memory.Store
	slotRepo  repository.SlotRepository
	apptRepo  repository.AppointmentRepository
	doctorID  uuid.UUID
	doctor    *model.Caller
	patient   *model.Caller
	patientID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	userRepo := memory.NewUserRepository(store)
	doctorRepo := memory.NewDoctorRepository(store)
	slotRepo := memory.NewSlotRepository(store)
	apptRepo := memory.NewAppointmentRepository(store)

	docUser := &model.User{Email: "doc@example.com", FullName: "Dr Who", Role: model.RoleDoctor}
	profile := &model.DoctorProfile{Specialization: "Cardiology"}
	require.NoError(t, userRepo.CreateWithProfile(ctx, docUser, profile))

	patient := &model.User{Email: "pat@example.com", FullName: "Pat Ient", Role: model.RolePatient}
	require.NoError(t, userRepo.Create(ctx, patient))

	return &fixture{
		svc:       NewService(doctorRepo, slotRepo, apptRepo, nil, nil, nil),
		store:     store,
		slotRepo:  slotRepo,
		apptRepo:  apptRepo,
		doctorID:  profile.ID,
		doctor:    &model.Caller{ID: docUser.ID, Role: model.RoleDoctor},
		patient:   &model.Caller{ID: patient.ID, Role: model.RolePatient},
		patientID: patient.ID,
	}
}

func (f *fixture) addSlot(t *testing.T, start time.Time) *model.Slot {
	t.Helper()
	end := start.Add(model.SlotDuration)
	slot := &model.Slot{DoctorID: f.doctorID, StartTime: start, EndTime: &end}
	require.NoError(t, f.slotRepo.Create(context.Background(), slot))
	return slot
}

func TestBook(t *testing.T) {
	ctx := context.Background()
	start := time.Now().UTC().Add(48 * time.Hour)

	t.Run("creates appointment and flips the slot", func(t *testing.T) {
		f := newFixture(t)
		slot := f.addSlot(t, start)

		appt, err := f.svc.Book(ctx, f.patient, &model.BookAppointmentRequest{
			DoctorID: f.doctorID,
			SlotID:   slot.ID,
			Reason:   "checkup",
		})
		require.NoError(t, err)
		assert.Equal(t, f.doctorID, appt.DoctorID)
		assert.Equal(t, f.patientID, appt.PatientID)
		require.NotNil(t, appt.SlotID)
		assert.Equal(t, slot.ID, *appt.SlotID)
		require.NotNil(t, appt.Reason)
		assert.Equal(t, "checkup", *appt.Reason)

		stored, err := f.slotRepo.Get(ctx, slot.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsBooked)
	})

	t.Run("unknown doctor", func(t *testing.T) {
		f := newFixture(t)
		slot := f.addSlot(t, start)
		_, err := f.svc.Book(ctx, f.patient, &model.BookAppointmentRequest{DoctorID: uuid.New(), SlotID: slot.ID})
		assert.True(t, apperrors.IsCode(err, apperrors.ErrDoctorNotFound))
	})

	t.Run("unknown slot", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Book(ctx, f.patient, &model.BookAppointmentRequest{DoctorID: f.doctorID, SlotID: uuid.New()})
		assert.True(t, apperrors.IsCode(err, apperrors.ErrSlotNotFound))
	})

	t.Run("slot owned by another doctor", func(t *testing.T) {
		f := newFixture(t)
		other := &model.User{Email: "other@example.com", FullName: "Dr Other", Role: model.RoleDoctor}
		otherProfile := &model.DoctorProfile{Specialization: "Dermatology"}
		require.NoError(t, memory.NewUserRepository(f.store).CreateWithProfile(ctx, other, otherProfile))

		end := start.Add(model.SlotDuration)
		slot := &model.Slot{DoctorID: otherProfile.ID, StartTime: start, EndTime: &end}
		require.NoError(t, f.slotRepo.Create(ctx, slot))

		_, err := f.svc.Book(ctx, f.patient, &model.BookAppointmentRequest{DoctorID: f.doctorID, SlotID: slot.ID})
		assert.True(t, apperrors.IsCode(err, apperrors.ErrSlotOwnershipMismatch))
	})

	t.Run("already booked slot is rejected and never double-booked", func(t *testing.T) {
		f := newFixture(t)
		slot := f.addSlot(t, start)

		_, err := f.svc.Book(ctx, f.patient, &model.BookAppointmentRequest{DoctorID: f.doctorID, SlotID: slot.ID})
		require.NoError(t, err)

		_, err = f.svc.Book(ctx, f.patient, &model.BookAppointmentRequest{DoctorID: f.doctorID, SlotID: slot.ID})
		assert.True(t, apperrors.IsCode(err, apperrors.ErrSlotAlreadyBooked))

		appts, err := f.apptRepo.ListByPatient(ctx, f.patientID)
		require.NoError(t, err)
		assert.Len(t, appts, 1)
	})

	t.Run("doctors cannot book", func(t *testing.T) {
		f := newFixture(t)
		slot := f.addSlot(t, start)
		_, err := f.svc.Book(ctx, f.doctor, &model.BookAppointmentRequest{DoctorID: f.doctorID, SlotID: slot.ID})
		assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))
	})
}

// Racing bookers on one slot: exactly one wins, the rest observe
// SlotAlreadyBooked, and exactly one appointment exists afterwards.
func TestBookConcurrent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	slot := f.addSlot(t, time.Now().UTC().Add(48*time.Hour))

	userRepo := memory.NewUserRepository(f.store)
	const bookers = 16

	callers := make([]*model.Caller, bookers)
	for i := range callers {
		u := &model.User{Email: uuid.New().String() + "@example.com", FullName: "Racer", Role: model.RolePatient}
		require.NoError(t, userRepo.Create(ctx, u))
		callers[i] = &model.Caller{ID: u.ID, Role: model.RolePatient}
	}

	var wg sync.WaitGroup
	results := make(chan error, bookers)
	for _, caller := range callers {
		wg.Add(1)
		go func(c *model.Caller) {
			defer wg.Done()
			_, err := f.svc.Book(ctx, c, &model.BookAppointmentRequest{DoctorID: f.doctorID, SlotID: slot.ID})
			results <- err
		}(caller)
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case apperrors.IsCode(err, apperrors.ErrSlotAlreadyBooked):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, bookers-1, conflicts)

	total := 0
	for _, caller := range callers {
		appts, err := f.apptRepo.ListByPatient(ctx, caller.ID)
		require.NoError(t, err)
		total += len(appts)
	}
	assert.Equal(t, 1, total)

	stored, err := f.slotRepo.Get(ctx, slot.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsBooked)
}

func TestCancel(t *testing.T) {
	ctx := context.Background()

	book := func(t *testing.T, f *fixture, start time.Time) (*model.Slot, *model.Appointment) {
		t.Helper()
		slot := f.addSlot(t, start)
		appt, err := f.svc.Book(ctx, f.patient, &model.BookAppointmentRequest{DoctorID: f.doctorID, SlotID: slot.ID})
		require.NoError(t, err)
		return slot, appt
	}

	t.Run("unknown appointment", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.Cancel(ctx, f.patient, uuid.New())
		assert.True(t, apperrors.IsCode(err, apperrors.ErrAppointmentNotFound))
	})

	t.Run("patient may cancel own appointment outside the notice window", func(t *testing.T) {
		f := newFixture(t)
		slot, appt := book(t, f, time.Now().UTC().Add(11*time.Hour))

		require.NoError(t, f.svc.Cancel(ctx, f.patient, appt.ID))

		_, err := f.apptRepo.Get(ctx, appt.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		stored, err := f.slotRepo.Get(ctx, slot.ID)
		require.NoError(t, err)
		assert.False(t, stored.IsBooked)
	})

	t.Run("patient cannot cancel within the notice window", func(t *testing.T) {
		f := newFixture(t)
		slot, appt := book(t, f, time.Now().UTC().Add(5*time.Hour))

		err := f.svc.Cancel(ctx, f.patient, appt.ID)
		require.True(t, apperrors.IsCode(err, apperrors.ErrTooLateToCancel))

		appErr := err.(*apperrors.AppError)
		hours, ok := appErr.Details["hours_until"].(float64)
		require.True(t, ok)
		assert.InDelta(t, 5.0, hours, 0.1)

		// Nothing changed.
		_, err = f.apptRepo.Get(ctx, appt.ID)
		require.NoError(t, err)
		stored, err := f.slotRepo.Get(ctx, slot.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsBooked)
	})

	t.Run("patient cannot cancel someone else's appointment", func(t *testing.T) {
		f := newFixture(t)
		_, appt := book(t, f, time.Now().UTC().Add(48*time.Hour))

		stranger := &model.Caller{ID: uuid.New(), Role: model.RolePatient}
		err := f.svc.Cancel(ctx, stranger, appt.ID)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))
	})

	t.Run("doctor may cancel inside the notice window", func(t *testing.T) {
		f := newFixture(t)
		slot, appt := book(t, f, time.Now().UTC().Add(time.Hour))

		require.NoError(t, f.svc.Cancel(ctx, f.doctor, appt.ID))

		stored, err := f.slotRepo.Get(ctx, slot.ID)
		require.NoError(t, err)
		assert.False(t, stored.IsBooked)
	})

	t.Run("doctor cannot cancel another doctor's appointment", func(t *testing.T) {
		f := newFixture(t)
		_, appt := book(t, f, time.Now().UTC().Add(48*time.Hour))

		other := &model.User{Email: "other@example.com", FullName: "Dr Other", Role: model.RoleDoctor}
		otherProfile := &model.DoctorProfile{Specialization: "Dermatology"}
		require.NoError(t, memory.NewUserRepository(f.store).CreateWithProfile(ctx, other, otherProfile))

		err := f.svc.Cancel(ctx, &model.Caller{ID: other.ID, Role: model.RoleDoctor}, appt.ID)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))
	})

	t.Run("doctor without a profile is forbidden", func(t *testing.T) {
		f := newFixture(t)
		_, appt := book(t, f, time.Now().UTC().Add(48*time.Hour))

		err := f.svc.Cancel(ctx, &model.Caller{ID: uuid.New(), Role: model.RoleDoctor}, appt.ID)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))
	})
}

func TestListFor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	slot := f.addSlot(t, time.Now().UTC().Add(48*time.Hour))

	_, err := f.svc.Book(ctx, f.patient, &model.BookAppointmentRequest{DoctorID: f.doctorID, SlotID: slot.ID})
	require.NoError(t, err)

	t.Run("patient sees own appointments", func(t *testing.T) {
		appts, err := f.svc.ListFor(ctx, f.patient)
		require.NoError(t, err)
		require.Len(t, appts, 1)
		assert.Equal(t, f.patientID, appts[0].PatientID)
	})

	t.Run("other patients see nothing", func(t *testing.T) {
		appts, err := f.svc.ListFor(ctx, &model.Caller{ID: uuid.New(), Role: model.RolePatient})
		require.NoError(t, err)
		assert.Empty(t, appts)
	})

	t.Run("doctor sees appointments on own profile", func(t *testing.T) {
		appts, err := f.svc.ListFor(ctx, f.doctor)
		require.NoError(t, err)
		require.Len(t, appts, 1)
		assert.Equal(t, f.doctorID, appts[0].DoctorID)
	})

	t.Run("doctor without profile gets empty listing, not an error", func(t *testing.T) {
		appts, err := f.svc.ListFor(ctx, &model.Caller{ID: uuid.New(), Role: model.RoleDoctor})
		require.NoError(t, err)
		assert.Empty(t, appts)
	})
}
