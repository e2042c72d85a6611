package models

import "time"

// Attempt is one solved-question event from the practice surface.
// Attempts are append-only; this service only ever reads them.
type Attempt struct {
	ID               string    `bson:"_id,omitempty" json:"id"`
	UserID           string    `bson:"user_id" json:"user_id"`
	QuestionID       string    `bson:"question_id" json:"question_id"`
	TopicID          string    `bson:"topic_id" json:"topic_id"`
	SubjectID        string    `bson:"subject_id" json:"subject_id"`
	SubtopicIDs      []string  `bson:"subtopic_ids" json:"subtopic_ids"`
	IsCorrect        bool      `bson:"is_correct" json:"is_correct"`
	TimeSpentSeconds int       `bson:"time_spent_seconds" json:"time_spent_seconds"`
	HintsUsed        int       `bson:"hints_used" json:"hints_used"`
	AttemptedAt      time.Time `bson:"attempted_at" json:"attempted_at"`
}
