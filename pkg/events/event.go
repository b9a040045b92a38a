// Package events publishes booking lifecycle changes to a Kafka topic so
// downstream consumers (audit worker, notifications) can react without
// coupling to the API service.
package events

import (
	"encoding/json"
	"time"

	"roomly/pkg/model"

	"github.com/google/uuid"
)

const (
	TypeBookingCreated   = "booking.created"
	TypeBookingCancelled = "booking.cancelled"
	TypeBookingDeleted   = "booking.deleted"
)

// BookingEvent is the wire payload. The booking snapshot reflects the state
// after the operation; for deletes it is the last persisted state.
type BookingEvent struct {
	EventID    string         `json:"event_id"`
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Booking    *model.Booking `json:"booking"`
}

func NewBookingEvent(eventType string, booking *model.Booking) BookingEvent {
	return BookingEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Booking:    booking,
	}
}

func (e BookingEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}

func DecodeBookingEvent(data []byte) (BookingEvent, error) {
	var e BookingEvent
	err := json.Unmarshal(data, &e)
	return e, err
}
