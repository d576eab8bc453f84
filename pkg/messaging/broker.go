package messaging

import "context"

// Booking lifecycle channels.
const (
	ChannelAppointmentBooked    = "appointment.booked"
	ChannelAppointmentCancelled = "appointment.cancelled"
)

// Broker publishes and consumes booking lifecycle events.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}
