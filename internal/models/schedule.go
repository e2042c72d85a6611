package models

import "time"

// Review schedule lifecycle states. This service owns the
// UNSCHEDULED -> SCHEDULED transition; DUE and REVIEWED are reported
// back by the practice surface, which then triggers a fresh pass.
const (
	ScheduleStatusUnscheduled = "unscheduled"
	ScheduleStatusScheduled   = "scheduled"
	ScheduleStatusDue         = "due"
	ScheduleStatusReviewed    = "reviewed"
)

// ReviewSchedule is the per (user, topic) spaced-repetition record.
// Upserted keyed by (user_id, topic_id), never duplicated.
type ReviewSchedule struct {
	ID                  string    `bson:"_id,omitempty" json:"id"`
	UserID              string    `bson:"user_id" json:"user_id"`
	TopicID             string    `bson:"topic_id" json:"topic_id"`
	SubjectID           string    `bson:"subject_id" json:"subject_id"`
	NextReviewAt        time.Time `bson:"next_review_at" json:"next_review_at"`
	MasteryAtScheduling float64   `bson:"mastery_at_scheduling" json:"mastery_at_scheduling"`
	RevisionCount       int       `bson:"revision_count" json:"revision_count"`
	Status              string    `bson:"status" json:"status"`
	CreatedAt           time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time `bson:"updated_at" json:"updated_at"`
}
