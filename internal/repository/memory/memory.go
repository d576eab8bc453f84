// Package memory provides an in-memory repository implementation with
// the same conditional-claim semantics as the postgres one. It backs
// service tests and local development without a database.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
)

// Store holds all four entity collections behind one mutex so that
// multi-entity operations (registration, booking, cancellation) are
// atomic, mirroring the postgres transactions.
type Store struct {
	mu           sync.Mutex
	users        map[uuid.UUID]*model.User
	usersByEmail map[string]uuid.UUID
	doctors      map[uuid.UUID]*model.DoctorProfile
	slots        map[uuid.UUID]*model.Slot
	appointments map[uuid.UUID]*model.Appointment
}

func NewStore() *Store {
	return &Store{
		users:        make(map[uuid.UUID]*model.User),
		usersByEmail: make(map[string]uuid.UUID),
		doctors:      make(map[uuid.UUID]*model.DoctorProfile),
		slots:        make(map[uuid.UUID]*model.Slot),
		appointments: make(map[uuid.UUID]*model.Appointment),
	}
}

type userRepository struct{ store *Store }
type doctorRepository struct{ store *Store }
type slotRepository struct{ store *Store }
type appointmentRepository struct{ store *Store }

func NewUserRepository(s *Store) repository.UserRepository {
	return &userRepository{store: s}
}

func NewDoctorRepository(s *Store) repository.DoctorRepository {
	return &doctorRepository{store: s}
}

func NewSlotRepository(s *Store) repository.SlotRepository {
	return &slotRepository{store: s}
}

func NewAppointmentRepository(s *Store) repository.AppointmentRepository {
	return &appointmentRepository{store: s}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.insertUser(user)
}

func (r *userRepository) CreateWithProfile(ctx context.Context, user *model.User, profile *model.DoctorProfile) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.insertUser(user); err != nil {
		return err
	}

	profile.ID = uuid.New()
	profile.UserID = user.ID
	profile.CreatedAt = time.Now().UTC()
	profile.UpdatedAt = profile.CreatedAt
	cp := *profile
	r.store.doctors[profile.ID] = &cp
	return nil
}

func (s *Store) insertUser(user *model.User) error {
	user.ID = uuid.New()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	s.users[user.ID] = &cp
	s.usersByEmail[user.Email] = user.ID
	return nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user, ok := r.store.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	id, ok := r.store.usersByEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r.store.users[id]
	return &cp, nil
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.DoctorProfile, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	profile, ok := r.store.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *profile
	return &cp, nil
}

func (r *doctorRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.DoctorProfile, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, profile := range r.store.doctors {
		if profile.UserID == userID {
			cp := *profile
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *doctorRepository) List(ctx context.Context, filter *model.DoctorFilter) ([]*model.DoctorProfile, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	profiles := []*model.DoctorProfile{}
	for _, profile := range r.store.doctors {
		if filter != nil && filter.Specialization != "" && profile.Specialization != filter.Specialization {
			continue
		}
		cp := *profile
		profiles = append(profiles, &cp)
	}
	return profiles, nil
}

func (r *slotRepository) Create(ctx context.Context, slot *model.Slot) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.insertSlot(slot)
	return nil
}

func (r *slotRepository) CreateBatch(ctx context.Context, slots []*model.Slot) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, slot := range slots {
		r.store.insertSlot(slot)
	}
	return nil
}

func (s *Store) insertSlot(slot *model.Slot) {
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	slot.CreatedAt = time.Now().UTC()
	slot.UpdatedAt = slot.CreatedAt
	cp := *slot
	s.slots[slot.ID] = &cp
}

func (r *slotRepository) Get(ctx context.Context, id uuid.UUID) (*model.Slot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	slot, ok := r.store.slots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *slot
	return &cp, nil
}

func (r *slotRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID, onlyAvailable bool) ([]*model.Slot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	slots := []*model.Slot{}
	for _, slot := range r.store.slots {
		if slot.DoctorID != doctorID {
			continue
		}
		if onlyAvailable && slot.IsBooked {
			continue
		}
		cp := *slot
		slots = append(slots, &cp)
	}
	return slots, nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	appointment, ok := r.store.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *appointment
	return &cp, nil
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	appointments := []*model.Appointment{}
	for _, appointment := range r.store.appointments {
		if appointment.PatientID == patientID {
			cp := *appointment
			appointments = append(appointments, &cp)
		}
	}
	return appointments, nil
}

func (r *appointmentRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	appointments := []*model.Appointment{}
	for _, appointment := range r.store.appointments {
		if appointment.DoctorID == doctorID {
			cp := *appointment
			appointments = append(appointments, &cp)
		}
	}
	return appointments, nil
}

func (r *appointmentRepository) Book(ctx context.Context, appointment *model.Appointment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if appointment.SlotID != nil {
		slot, ok := r.store.slots[*appointment.SlotID]
		if !ok {
			return repository.ErrNotFound
		}
		if slot.IsBooked {
			return repository.ErrSlotTaken
		}
		slot.IsBooked = true
		slot.UpdatedAt = time.Now().UTC()
	}

	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now().UTC()
	cp := *appointment
	r.store.appointments[appointment.ID] = &cp
	return nil
}

func (r *appointmentRepository) Cancel(ctx context.Context, appointment *model.Appointment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.appointments[appointment.ID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.store.appointments, appointment.ID)

	if appointment.SlotID != nil {
		if slot, ok := r.store.slots[*appointment.SlotID]; ok {
			slot.IsBooked = false
			slot.UpdatedAt = time.Now().UTC()
		}
	}
	return nil
}
