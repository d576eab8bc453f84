package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jwalitptl/booking-api/internal/email"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/internal/service/booking"
	"github.com/jwalitptl/booking-api/pkg/logger"
	"github.com/jwalitptl/booking-api/pkg/messaging"
)

// Notifier consumes booking lifecycle events and emails the patient.
// Delivery is best-effort; failures are logged and the event dropped.
type Notifier struct {
	broker   messaging.Broker
	userRepo repository.UserRepository
	emailSvc email.Service
	logger   *logger.Logger
}

func NewNotifier(broker messaging.Broker, userRepo repository.UserRepository, emailSvc email.Service, logger *logger.Logger) *Notifier {
	return &Notifier{
		broker:   broker,
		userRepo: userRepo,
		emailSvc: emailSvc,
		logger:   logger,
	}
}

// Start blocks until the context is cancelled.
func (n *Notifier) Start(ctx context.Context) error {
	booked, err := n.broker.Subscribe(ctx, messaging.ChannelAppointmentBooked)
	if err != nil {
		return fmt.Errorf("failed to subscribe to booked events: %w", err)
	}
	cancelled, err := n.broker.Subscribe(ctx, messaging.ChannelAppointmentCancelled)
	if err != nil {
		return fmt.Errorf("failed to subscribe to cancelled events: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case payload, ok := <-booked:
			if !ok {
				return nil
			}
			n.handle(ctx, payload, "Appointment confirmed", "Your appointment has been booked.")
		case payload, ok := <-cancelled:
			if !ok {
				return nil
			}
			n.handle(ctx, payload, "Appointment cancelled", "Your appointment has been cancelled and the slot released.")
		}
	}
}

func (n *Notifier) handle(ctx context.Context, payload []byte, subject, body string) {
	var event booking.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		n.logger.ZL.Error().Err(err).Msg("failed to decode booking event")
		return
	}

	patient, err := n.userRepo.Get(ctx, event.PatientID)
	if err != nil {
		n.logger.ZL.Error().Err(err).Str("patient_id", event.PatientID.String()).Msg("failed to load patient for notification")
		return
	}

	if err := n.emailSvc.Send(patient.Email, subject, body); err != nil {
		n.logger.ZL.Error().Err(err).Str("email", patient.Email).Msg("failed to send notification email")
		return
	}

	n.logger.ZL.Info().
		Str("appointment_id", event.AppointmentID.String()).
		Str("email", patient.Email).
		Msg("notification sent")
}
