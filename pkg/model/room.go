package model

import (
	"roomly/pkg/timeutil"
)

type Room struct {
	ID          string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name        string        `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Location    string        `json:"location" bson:"location" validate:"required,min=2,max=200"`
	Capacity    int           `json:"capacity" bson:"capacity" validate:"required,min=1,max=500"`
	Description string        `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=500"`
	IsAvailable bool          `json:"is_available" bson:"is_available"`
	CreatedAt   timeutil.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type RoomUpdate struct {
	Name        string  `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Location    string  `json:"location,omitempty" validate:"omitempty,min=2,max=200"`
	Capacity    *int    `json:"capacity,omitempty" validate:"omitempty,min=1,max=500"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	IsAvailable *bool   `json:"is_available,omitempty"`
}
