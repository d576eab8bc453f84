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

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, doctor_id, patient_id, slot_id, created_at, reason
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	return r.list(ctx, "patient_id", patientID)
}

func (r *appointmentRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	return r.list(ctx, "doctor_id", doctorID)
}

func (r *appointmentRepository) list(ctx context.Context, column string, id uuid.UUID) ([]*model.Appointment, error) {
	query := fmt.Sprintf(`
		SELECT id, doctor_id, patient_id, slot_id, created_at, reason
		FROM appointments
		WHERE %s = $1
		ORDER BY created_at ASC
	`, column)

	appointments := []*model.Appointment{}
	if err := r.db.SelectContext(ctx, &appointments, query, id); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// Book claims the slot and inserts the appointment in one transaction.
// The claim is a conditional update checked via RowsAffected, so two
// bookers that both read is_booked=false cannot both commit.
func (r *appointmentRepository) Book(ctx context.Context, appointment *model.Appointment) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if appointment.SlotID != nil {
			result, err := tx.ExecContext(ctx, `
				UPDATE slots
				SET is_booked = TRUE, updated_at = $1
				WHERE id = $2 AND is_booked = FALSE
			`, time.Now().UTC(), *appointment.SlotID)
			if err != nil {
				return fmt.Errorf("failed to claim slot: %w", err)
			}

			rows, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			if rows == 0 {
				return repository.ErrSlotTaken
			}
		}

		appointment.ID = uuid.New()
		appointment.CreatedAt = time.Now().UTC()

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO appointments (id, doctor_id, patient_id, slot_id, created_at, reason)
			VALUES ($1, $2, $3, $4, $5, $6)
		`,
			appointment.ID,
			appointment.DoctorID,
			appointment.PatientID,
			appointment.SlotID,
			appointment.CreatedAt,
			appointment.Reason,
		); err != nil {
			return fmt.Errorf("failed to create appointment: %w", err)
		}
		return nil
	})
}

// Cancel deletes the appointment and releases its slot together. The
// slot row survives with is_booked reset to false.
func (r *appointmentRepository) Cancel(ctx context.Context, appointment *model.Appointment) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, appointment.ID)
		if err != nil {
			return fmt.Errorf("failed to delete appointment: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return repository.ErrNotFound
		}

		if appointment.SlotID != nil {
			if _, err := tx.ExecContext(ctx, `
				UPDATE slots
				SET is_booked = FALSE, updated_at = $1
				WHERE id = $2
			`, time.Now().UTC(), *appointment.SlotID); err != nil {
				return fmt.Errorf("failed to release slot: %w", err)
			}
		}
		return nil
	})
}
