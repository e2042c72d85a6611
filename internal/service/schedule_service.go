package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"mastery-service/internal/models"
	"mastery-service/internal/scheduling"
)

type MasteryReader interface {
	FindByUser(ctx context.Context, userID string) ([]models.TopicMastery, error)
}

type ScheduleStore interface {
	FindByUser(ctx context.Context, userID string) ([]models.ReviewSchedule, error)
	FindByUserAndTopic(ctx context.Context, userID, topicID string) (*models.ReviewSchedule, error)
	Upsert(ctx context.Context, s *models.ReviewSchedule) error
	UpdateStatus(ctx context.Context, userID, topicID, status string) error
}

// ScheduleService turns fresh mastery into review dates: interval from
// the spacing ladder, conflict resolution through the subject
// resolver, row-level upsert per (user, topic).
type ScheduleService struct {
	mastery   MasteryReader
	schedules ScheduleStore
	resolver  *scheduling.Resolver
	config    *scheduling.ScheduleConfig
	nowFn     func() time.Time
}

func NewScheduleService(
	mastery MasteryReader,
	schedules ScheduleStore,
	resolver *scheduling.Resolver,
	config *scheduling.ScheduleConfig,
) *ScheduleService {
	if config == nil {
		config = scheduling.DefaultScheduleConfig()
	}
	return &ScheduleService{
		mastery:   mastery,
		schedules: schedules,
		resolver:  resolver,
		config:    config,
		nowFn:     time.Now,
	}
}

// UpdateSchedulesForUser upserts one ReviewSchedule row per topic the
// user has mastery for. Runs after the mastery pass has committed, so
// it always reads fresh levels. Per-topic failures are logged and
// skipped; the rest of the user's topics still get scheduled.
func (s *ScheduleService) UpdateSchedulesForUser(ctx context.Context, userID string) error {
	records, err := s.mastery.FindByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load mastery for user %s: %w", userID, err)
	}

	today := scheduling.StartOfDay(s.nowFn())
	for _, record := range records {
		if err := s.scheduleTopic(ctx, userID, record, today); err != nil {
			log.Printf("Failed to schedule topic %s for user %s: %v, continuing", record.TopicID, userID, err)
		}
	}
	return nil
}

func (s *ScheduleService) scheduleTopic(ctx context.Context, userID string, record models.TopicMastery, today time.Time) error {
	days := s.config.IntervalDays(record.Level)
	proposed := today.AddDate(0, 0, days)
	actual := s.resolver.NextAvailableDate(ctx, userID, record.SubjectID, proposed, record.TopicID)

	existing, err := s.schedules.FindByUserAndTopic(ctx, userID, record.TopicID)
	if err != nil {
		return fmt.Errorf("failed to load existing schedule: %w", err)
	}

	now := s.nowFn()
	row := &models.ReviewSchedule{
		UserID:              userID,
		TopicID:             record.TopicID,
		SubjectID:           record.SubjectID,
		NextReviewAt:        actual,
		MasteryAtScheduling: record.Level,
		Status:              models.ScheduleStatusScheduled,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if existing == nil {
		row.RevisionCount = 1
	} else {
		row.RevisionCount = existing.RevisionCount
		// The revision count only moves when the review date does.
		if actual.After(scheduling.StartOfDay(existing.NextReviewAt)) {
			row.RevisionCount++
		}
	}

	if err := s.schedules.Upsert(ctx, row); err != nil {
		return fmt.Errorf("failed to upsert schedule: %w", err)
	}
	return nil
}

// MarkReviewed records the REVIEWED transition reported by the practice
// surface. The caller is expected to follow with a fresh mastery +
// scheduling pass for the user so the next cycle starts from current
// data.
func (s *ScheduleService) MarkReviewed(ctx context.Context, userID, topicID string) error {
	existing, err := s.schedules.FindByUserAndTopic(ctx, userID, topicID)
	if err != nil {
		return fmt.Errorf("failed to load schedule for user %s topic %s: %w", userID, topicID, err)
	}
	if existing == nil {
		return fmt.Errorf("user %s topic %s: %w", userID, topicID, ErrScheduleNotFound)
	}
	return s.schedules.UpdateStatus(ctx, userID, topicID, models.ScheduleStatusReviewed)
}

// GetSchedulesForUser returns the user's schedule rows ordered by
// review date.
func (s *ScheduleService) GetSchedulesForUser(ctx context.Context, userID string) ([]models.ReviewSchedule, error) {
	return s.schedules.FindByUser(ctx, userID)
}
