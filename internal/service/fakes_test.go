package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mastery-service/internal/models"
)

// In-memory stores standing in for the Mongo repositories.

type memAttempts struct {
	attempts []models.Attempt
	err      error
}

func (m *memAttempts) FindRecentByUser(_ context.Context, userID string, since time.Time, limit int64) ([]models.Attempt, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Attempt
	for _, a := range m.attempts {
		if a.UserID == userID && !a.AttemptedAt.Before(since) {
			out = append(out, a)
		}
		if int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

type memTopicMastery struct {
	rows       map[string]*models.TopicMastery // keyed user|topic
	failTopics map[string]bool
}

func newMemTopicMastery() *memTopicMastery {
	return &memTopicMastery{rows: make(map[string]*models.TopicMastery), failTopics: make(map[string]bool)}
}

func masteryKey(userID, topicID string) string {
	return fmt.Sprintf("%s|%s", userID, topicID)
}

func (m *memTopicMastery) FindByUser(_ context.Context, userID string) ([]models.TopicMastery, error) {
	var out []models.TopicMastery
	for _, row := range m.rows {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *memTopicMastery) FindByUserAndSubject(_ context.Context, userID, subjectID string) ([]models.TopicMastery, error) {
	var out []models.TopicMastery
	for _, row := range m.rows {
		if row.UserID == userID && row.SubjectID == subjectID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *memTopicMastery) Upsert(_ context.Context, record *models.TopicMastery) error {
	if m.failTopics[record.TopicID] {
		return errors.New("write failed")
	}
	clone := *record
	m.rows[masteryKey(record.UserID, record.TopicID)] = &clone
	return nil
}

type memSubjectMastery struct {
	rows map[string]*models.SubjectMastery // keyed user|subject
}

func newMemSubjectMastery() *memSubjectMastery {
	return &memSubjectMastery{rows: make(map[string]*models.SubjectMastery)}
}

func (m *memSubjectMastery) FindByUser(_ context.Context, userID string) ([]models.SubjectMastery, error) {
	var out []models.SubjectMastery
	for _, row := range m.rows {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *memSubjectMastery) Upsert(_ context.Context, record *models.SubjectMastery) error {
	clone := *record
	m.rows[masteryKey(record.UserID, record.SubjectID)] = &clone
	return nil
}

type memCurriculum struct {
	topics map[string][]models.Topic // keyed by subject id
}

func (m *memCurriculum) FindTopicsBySubject(_ context.Context, subjectID string) ([]models.Topic, error) {
	return m.topics[subjectID], nil
}

func (m *memCurriculum) TopicIDsForSubject(ctx context.Context, subjectID string) ([]string, error) {
	topics, err := m.FindTopicsBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, topic := range topics {
		ids = append(ids, topic.ID)
	}
	return ids, nil
}

type memSchedules struct {
	rows map[string]*models.ReviewSchedule // keyed user|topic
}

func newMemSchedules() *memSchedules {
	return &memSchedules{rows: make(map[string]*models.ReviewSchedule)}
}

func (m *memSchedules) FindByUser(_ context.Context, userID string) ([]models.ReviewSchedule, error) {
	var out []models.ReviewSchedule
	for _, row := range m.rows {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *memSchedules) FindByUserAndTopic(_ context.Context, userID, topicID string) (*models.ReviewSchedule, error) {
	if row, ok := m.rows[masteryKey(userID, topicID)]; ok {
		clone := *row
		return &clone, nil
	}
	return nil, nil
}

func (m *memSchedules) FindByUserAndTopics(_ context.Context, userID string, topicIDs []string) ([]models.ReviewSchedule, error) {
	var out []models.ReviewSchedule
	for _, topicID := range topicIDs {
		if row, ok := m.rows[masteryKey(userID, topicID)]; ok {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *memSchedules) Upsert(_ context.Context, record *models.ReviewSchedule) error {
	key := masteryKey(record.UserID, record.TopicID)
	if existing, ok := m.rows[key]; ok {
		record.CreatedAt = existing.CreatedAt
	}
	clone := *record
	m.rows[key] = &clone
	return nil
}

func (m *memSchedules) UpdateStatus(_ context.Context, userID, topicID, status string) error {
	row, ok := m.rows[masteryKey(userID, topicID)]
	if !ok {
		return errors.New("no such row")
	}
	row.Status = status
	return nil
}
