package models

import "time"

// Subject and Topic mirror the curriculum service's content hierarchy.
// Read-only here; the engine needs the topic -> subject mapping and the
// per-topic weightage for the subject mastery roll-up.

type Subject struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Stream    string    `bson:"stream" json:"stream"`
	IsActive  bool      `bson:"is_active" json:"is_active"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

type Topic struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Name      string    `bson:"name" json:"name"`
	SubjectID string    `bson:"subject_id" json:"subject_id"`
	Weightage float64   `bson:"weightage" json:"weightage"`
	IsActive  bool      `bson:"is_active" json:"is_active"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
