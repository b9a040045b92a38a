package model

import (
	"roomly/pkg/timeutil"
)

type User struct {
	ID           string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Username     string        `json:"username" bson:"username" validate:"required,min=2,max=50"`
	Email        string        `json:"email" bson:"email" validate:"required,email"`
	Phone        string        `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,e164"`
	PasswordHash string        `json:"-" bson:"password_hash"`
	IsActive     bool          `json:"is_active" bson:"is_active"`
	CreatedAt    timeutil.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// UserCreate is the registration payload. The plaintext password never
// reaches the model layer; it is hashed before a User is constructed.
type UserCreate struct {
	Username string `json:"username" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,e164"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}
