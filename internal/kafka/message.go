package kafka

import (
	"time"

	"flight_booker/internal/models"

	"github.com/google/uuid"
)

type EventType string

const (
	EventBookingCreated EventType = "booking.created"
	EventBookingDeleted EventType = "booking.deleted"
)

// BookingEvent - сообщение о создании/удалении бронирования через UI.
// Для удаления Booking пустой: у клиента есть только id.
type BookingEvent struct {
	EventID    string          `json:"event_id"`
	Type       EventType       `json:"type"`
	BookingID  int             `json:"booking_id"`
	Booking    *models.Booking `json:"booking,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func NewBookingCreated(b models.Booking) *BookingEvent {
	return &BookingEvent{
		EventID:    uuid.NewString(),
		Type:       EventBookingCreated,
		BookingID:  b.ID,
		Booking:    &b,
		OccurredAt: time.Now().UTC(),
	}
}

func NewBookingDeleted(id int) *BookingEvent {
	return &BookingEvent{
		EventID:    uuid.NewString(),
		Type:       EventBookingDeleted,
		BookingID:  id,
		OccurredAt: time.Now().UTC(),
	}
}
