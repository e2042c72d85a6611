package models

import "time"

// TopicMastery is the per (user, topic) competence estimate. One logical
// row per pair, upserted on every recomputation and never hand-edited:
// the level must always be reproducible from the attempt history.
type TopicMastery struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	UserID         string    `bson:"user_id" json:"user_id"`
	TopicID        string    `bson:"topic_id" json:"topic_id"`
	SubjectID      string    `bson:"subject_id" json:"subject_id"`
	Level          float64   `bson:"level" json:"level"`
	Accuracy       float64   `bson:"accuracy" json:"accuracy"`
	RecencyScore   float64   `bson:"recency_score" json:"recency_score"`
	WindowAttempts int       `bson:"window_attempts" json:"window_attempts"`
	ComputedAt     time.Time `bson:"computed_at" json:"computed_at"`
}

// SubjectMastery is the per (user, subject) aggregate, recomputed from
// the constituent topic rows whenever any of them changes.
type SubjectMastery struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	UserID     string    `bson:"user_id" json:"user_id"`
	SubjectID  string    `bson:"subject_id" json:"subject_id"`
	Level      float64   `bson:"level" json:"level"`
	TopicCount int       `bson:"topic_count" json:"topic_count"`
	ComputedAt time.Time `bson:"computed_at" json:"computed_at"`
}
