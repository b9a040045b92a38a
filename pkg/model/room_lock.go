package model

import "time"

// RoomLock is an advisory lock document guarding the validate-then-persist
// sequence for a single room. The unique _id makes the store, not the
// process, the point of mutual exclusion; a TTL index on expires_at clears
// locks abandoned by crashed requests.
type RoomLock struct {
	ID        string    `bson:"_id" json:"id"`
	RoomID    string    `bson:"room_id" json:"room_id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
