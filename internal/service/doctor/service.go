package doctor

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

const (
	listCacheTTL     = 30 * time.Second
	cacheCleanupTick = 5 * time.Minute
)

type Service struct {
	doctorRepo repository.DoctorRepository
	cache      *gocache.Cache
}

func NewService(doctorRepo repository.DoctorRepository) *Service {
	return &Service{
		doctorRepo: doctorRepo,
		cache:      gocache.New(listCacheTTL, cacheCleanupTick),
	}
}

// List returns doctor profiles, optionally filtered by exact
// specialization. Listings are cached briefly per filter.
func (s *Service) List(ctx context.Context, filter *model.DoctorFilter) ([]*model.DoctorProfile, error) {
	key := "doctors:"
	if filter != nil {
		key += filter.Specialization
	}

	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*model.DoctorProfile), nil
	}

	profiles, err := s.doctorRepo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	s.cache.Set(key, profiles, gocache.DefaultExpiration)
	return profiles, nil
}

// Get returns a single profile.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.DoctorProfile, error) {
	profile, err := s.doctorRepo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.DoctorNotFound(err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return profile, nil
}

// FlushCache drops cached listings. Called after doctor registration
// so new profiles show up immediately.
func (s *Service) FlushCache() {
	s.cache.Flush()
}
