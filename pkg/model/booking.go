package model

import (
	"roomly/pkg/timeutil"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Booking reserves one room for one user over the half-open
// interval [StartTime, EndTime). Times are UTC at millisecond precision.
type Booking struct {
	ID        string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID    string        `json:"user_id" bson:"user_id" validate:"required,mongodb"`
	RoomID    string        `json:"room_id" bson:"room_id" validate:"required,mongodb"`
	StartTime timeutil.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime   timeutil.Time `json:"end_time" bson:"end_time" validate:"required"`
	Purpose   string        `json:"purpose,omitempty" bson:"purpose,omitempty" validate:"omitempty,max=500"`
	Status    string        `json:"status" bson:"status" validate:"omitempty,oneof=pending confirmed cancelled"`
	CreatedAt timeutil.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Cancelled reports whether the booking is excluded from overlap checks.
func (b *Booking) Cancelled() bool {
	return b.Status == StatusCancelled
}
