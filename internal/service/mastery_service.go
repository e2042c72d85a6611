package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"mastery-service/internal/mastery"
	"mastery-service/internal/models"
)

// Store contracts the mastery service depends on. The Mongo
// repositories satisfy these; tests substitute in-memory fakes.

type AttemptSource interface {
	FindRecentByUser(ctx context.Context, userID string, since time.Time, limit int64) ([]models.Attempt, error)
}

type TopicMasteryStore interface {
	FindByUser(ctx context.Context, userID string) ([]models.TopicMastery, error)
	FindByUserAndSubject(ctx context.Context, userID, subjectID string) ([]models.TopicMastery, error)
	Upsert(ctx context.Context, m *models.TopicMastery) error
}

type SubjectMasteryStore interface {
	FindByUser(ctx context.Context, userID string) ([]models.SubjectMastery, error)
	Upsert(ctx context.Context, m *models.SubjectMastery) error
}

type TopicWeightSource interface {
	FindTopicsBySubject(ctx context.Context, subjectID string) ([]models.Topic, error)
}

// MasteryService recomputes per-topic and per-subject mastery for one
// user from the recent attempt window. It holds no per-user state
// between calls.
type MasteryService struct {
	attempts       AttemptSource
	topicMastery   TopicMasteryStore
	subjectMastery SubjectMasteryStore
	curriculum     TopicWeightSource
	calc           *mastery.Calculator
	config         *mastery.EngineConfig
	nowFn          func() time.Time
}

func NewMasteryService(
	attempts AttemptSource,
	topicMastery TopicMasteryStore,
	subjectMastery SubjectMasteryStore,
	curriculum TopicWeightSource,
	config *mastery.EngineConfig,
) *MasteryService {
	if config == nil {
		config = mastery.DefaultEngineConfig()
	}
	return &MasteryService{
		attempts:       attempts,
		topicMastery:   topicMastery,
		subjectMastery: subjectMastery,
		curriculum:     curriculum,
		calc:           mastery.NewCalculator(config),
		config:         config,
		nowFn:          time.Now,
	}
}

// ProcessOneUser recomputes mastery for every topic touched by the
// user's recent attempts, then rolls the affected subjects up. A
// persistence failure on one topic is logged and skipped so siblings
// and the subject roll-up still proceed; only a missing stream or a
// failed attempt read aborts the user.
func (s *MasteryService) ProcessOneUser(ctx context.Context, userID, stream string) error {
	if stream == "" {
		return fmt.Errorf("user %s has no active stream: %w", userID, ErrDataUnavailable)
	}

	now := s.nowFn()
	since := now.AddDate(0, 0, -s.config.AttemptWindowDays)
	attempts, err := s.attempts.FindRecentByUser(ctx, userID, since, s.config.AttemptFetchLimit)
	if err != nil {
		return fmt.Errorf("failed to load attempts for user %s: %w", userID, err)
	}
	if len(attempts) == 0 {
		// No recent practice: every topic keeps its prior mastery.
		return nil
	}

	scores := s.calc.ScoreTopics(attempts, now)

	touchedSubjects := make(map[string]bool)
	for _, score := range scores {
		record := &models.TopicMastery{
			UserID:         userID,
			TopicID:        score.TopicID,
			SubjectID:      score.SubjectID,
			Level:          score.Level,
			Accuracy:       score.Accuracy,
			RecencyScore:   score.RecencyScore,
			WindowAttempts: score.Attempts,
			ComputedAt:     now,
		}
		if err := s.topicMastery.Upsert(ctx, record); err != nil {
			log.Printf("Failed to persist mastery for user %s topic %s: %v, continuing", userID, score.TopicID, err)
			continue
		}
		touchedSubjects[score.SubjectID] = true
	}

	for subjectID := range touchedSubjects {
		if err := s.recomputeSubject(ctx, userID, subjectID, now); err != nil {
			log.Printf("Failed to roll up subject %s for user %s: %v, continuing", subjectID, userID, err)
		}
	}
	return nil
}

// recomputeSubject rebuilds the subject aggregate from all of the
// user's stored topic rows for that subject, weighted by the
// curriculum's topic weightage when present.
func (s *MasteryService) recomputeSubject(ctx context.Context, userID, subjectID string, now time.Time) error {
	records, err := s.topicMastery.FindByUserAndSubject(ctx, userID, subjectID)
	if err != nil {
		return fmt.Errorf("failed to load topic mastery: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	topicLevels := make(map[string]float64, len(records))
	for _, record := range records {
		topicLevels[record.TopicID] = record.Level
	}

	weightages := make(map[string]float64)
	topics, err := s.curriculum.FindTopicsBySubject(ctx, subjectID)
	if err != nil {
		// Roll up unweighted rather than dropping the aggregate.
		log.Printf("Failed to load weightages for subject %s: %v, using unweighted mean", subjectID, err)
	} else {
		for _, topic := range topics {
			weightages[topic.ID] = topic.Weightage
		}
	}

	aggregate := &models.SubjectMastery{
		UserID:     userID,
		SubjectID:  subjectID,
		Level:      mastery.SubjectLevel(topicLevels, weightages),
		TopicCount: len(records),
		ComputedAt: now,
	}
	if err := s.subjectMastery.Upsert(ctx, aggregate); err != nil {
		return fmt.Errorf("failed to persist subject mastery: %w", err)
	}
	return nil
}

// GetTopicMastery returns the user's stored per-topic mastery rows.
func (s *MasteryService) GetTopicMastery(ctx context.Context, userID string) ([]models.TopicMastery, error) {
	return s.topicMastery.FindByUser(ctx, userID)
}

// GetSubjectMastery returns the user's stored subject aggregates.
func (s *MasteryService) GetSubjectMastery(ctx context.Context, userID string) ([]models.SubjectMastery, error) {
	return s.subjectMastery.FindByUser(ctx, userID)
}
