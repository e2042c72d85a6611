package models

import "time"

// User mirrors the profile subsystem's view of a learner. Owned by the
// auth/profile service; read-only here. Batch eligibility means active
// with an assigned stream.
type User struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Stream      string    `bson:"stream" json:"stream"`
	IsActive    bool      `bson:"is_active" json:"is_active"`
	LastUpdated time.Time `bson:"last_updated" json:"last_updated"`
}
