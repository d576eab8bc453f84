package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
)

func (r *slotRepository) Create(ctx context.Context, slot *model.Slot) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		return insertSlot(ctx, tx, slot)
	})
}

func (r *slotRepository) CreateBatch(ctx context.Context, slots []*model.Slot) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, slot := range slots {
			if err := insertSlot(ctx, tx, slot); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertSlot(ctx context.Context, tx *sqlx.Tx, slot *model.Slot) error {
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	slot.CreatedAt = time.Now().UTC()
	slot.UpdatedAt = slot.CreatedAt

	query := `
		INSERT INTO slots (id, doctor_id, start_time, end_time, is_booked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := tx.ExecContext(ctx, query,
		slot.ID,
		slot.DoctorID,
		slot.StartTime,
		slot.EndTime,
		slot.IsBooked,
		slot.CreatedAt,
		slot.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to create slot: %w", err)
	}
	return nil
}

func (r *slotRepository) Get(ctx context.Context, id uuid.UUID) (*model.Slot, error) {
	query := `
		SELECT id, doctor_id, start_time, end_time, is_booked, created_at, updated_at
		FROM slots
		WHERE id = $1
	`
	var slot model.Slot
	err := r.db.GetContext(ctx, &slot, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}
	return &slot, nil
}

func (r *slotRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID, onlyAvailable bool) ([]*model.Slot, error) {
	query := `
		SELECT id, doctor_id, start_time, end_time, is_booked, created_at, updated_at
		FROM slots
		WHERE doctor_id = $1
	`
	if onlyAvailable {
		query += " AND is_booked = FALSE"
	}
	query += " ORDER BY start_time ASC"

	slots := []*model.Slot{}
	if err := r.db.SelectContext(ctx, &slots, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	return slots, nil
}
