package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
)

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.DoctorProfile, error) {
	query := `
		SELECT id, user_id, specialization, bio, created_at, updated_at
		FROM doctor_profiles
		WHERE id = $1
	`
	var profile model.DoctorProfile
	err := r.db.GetContext(ctx, &profile, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor profile: %w", err)
	}
	return &profile, nil
}

func (r *doctorRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.DoctorProfile, error) {
	query := `
		SELECT id, user_id, specialization, bio, created_at, updated_at
		FROM doctor_profiles
		WHERE user_id = $1
	`
	var profile model.DoctorProfile
	err := r.db.GetContext(ctx, &profile, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor profile by user: %w", err)
	}
	return &profile, nil
}

func (r *doctorRepository) List(ctx context.Context, filter *model.DoctorFilter) ([]*model.DoctorProfile, error) {
	query := `
		SELECT id, user_id, specialization, bio, created_at, updated_at
		FROM doctor_profiles
	`
	args := []interface{}{}

	if filter != nil && filter.Specialization != "" {
		query += " WHERE specialization = $1"
		args = append(args, filter.Specialization)
	}

	query += " ORDER BY created_at ASC"

	profiles := []*model.DoctorProfile{}
	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return profiles, nil
}
