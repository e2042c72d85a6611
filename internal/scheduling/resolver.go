package scheduling

import (
	"context"
	"log"
	"time"

	"mastery-service/internal/models"
)

// TopicSource lists the topic ids belonging to a subject.
type TopicSource interface {
	TopicIDsForSubject(ctx context.Context, subjectID string) ([]string, error)
}

// ScheduleSource loads the existing schedule rows for a set of topics.
type ScheduleSource interface {
	FindByUserAndTopics(ctx context.Context, userID string, topicIDs []string) ([]models.ReviewSchedule, error)
}

// Resolver enforces subject exclusivity: a user reviews at most one
// topic per subject per calendar day. It never fails; any lookup error
// or an exhausted horizon degrades to the proposed date, because an
// unresolved conflict must not block the scheduling pipeline.
type Resolver struct {
	topics      TopicSource
	schedules   ScheduleSource
	horizonDays int
}

func NewResolver(topics TopicSource, schedules ScheduleSource, horizonDays int) *Resolver {
	if horizonDays <= 0 {
		horizonDays = 365
	}
	return &Resolver{topics: topics, schedules: schedules, horizonDays: horizonDays}
}

// NextAvailableDate returns the first calendar day on or after proposed
// that no sibling topic of the subject already occupies.
// excludeTopicID is the topic being rescheduled; its own existing row
// never counts as a conflict.
func (r *Resolver) NextAvailableDate(ctx context.Context, userID, subjectID string, proposed time.Time, excludeTopicID string) time.Time {
	day := StartOfDay(proposed)

	topicIDs, err := r.topics.TopicIDsForSubject(ctx, subjectID)
	if err != nil {
		log.Printf("Resolver: failed to load topics for subject %s: %v, keeping proposed date", subjectID, err)
		return day
	}

	siblings := make([]string, 0, len(topicIDs))
	for _, id := range topicIDs {
		if id != excludeTopicID {
			siblings = append(siblings, id)
		}
	}
	if len(siblings) == 0 {
		return day
	}

	schedules, err := r.schedules.FindByUserAndTopics(ctx, userID, siblings)
	if err != nil {
		log.Printf("Resolver: failed to load schedules for user %s subject %s: %v, keeping proposed date", userID, subjectID, err)
		return day
	}

	occupied := make(map[string]bool, len(schedules))
	for _, schedule := range schedules {
		occupied[DayKey(schedule.NextReviewAt)] = true
	}

	resolved, ok := NextFreeDay(day, occupied, r.horizonDays)
	if !ok {
		log.Printf("Resolver: no free day within %d days for user %s subject %s, keeping proposed date", r.horizonDays, userID, subjectID)
	}
	return resolved
}

// NextFreeDay scans forward one day at a time from proposed and returns
// the first day absent from the occupied set. Past horizonDays forward
// steps it gives up and returns the proposed day itself, reporting
// false: a same-day collision is the lesser evil compared to failing
// the pipeline.
func NextFreeDay(proposed time.Time, occupied map[string]bool, horizonDays int) (time.Time, bool) {
	day := StartOfDay(proposed)
	for i := 0; i <= horizonDays; i++ {
		candidate := day.AddDate(0, 0, i)
		if !occupied[DayKey(candidate)] {
			return candidate, true
		}
	}
	return day, false
}
