package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"mastery-service/internal/models"
)

type fakeTopicSource struct {
	topics map[string][]string
	err    error
}

func (f *fakeTopicSource) TopicIDsForSubject(_ context.Context, subjectID string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.topics[subjectID], nil
}

type fakeScheduleSource struct {
	schedules []models.ReviewSchedule
	err       error
}

func (f *fakeScheduleSource) FindByUserAndTopics(_ context.Context, userID string, topicIDs []string) ([]models.ReviewSchedule, error) {
	if f.err != nil {
		return nil, f.err
	}
	wanted := make(map[string]bool, len(topicIDs))
	for _, id := range topicIDs {
		wanted[id] = true
	}
	var out []models.ReviewSchedule
	for _, s := range f.schedules {
		if s.UserID == userID && wanted[s.TopicID] {
			out = append(out, s)
		}
	}
	return out, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextFreeDayBoundary(t *testing.T) {
	proposed := day(2026, 9, 1)
	occupied := map[string]bool{
		DayKey(proposed):                  true,
		DayKey(proposed.AddDate(0, 0, 1)): true,
		DayKey(proposed.AddDate(0, 0, 2)): true,
	}

	resolved, ok := NextFreeDay(proposed, occupied, 365)
	if !ok {
		t.Fatal("Expected a free day within the horizon")
	}
	if !resolved.Equal(proposed.AddDate(0, 0, 3)) {
		t.Errorf("Expected D+3, got %v", resolved)
	}
}

func TestNextFreeDayNoConflict(t *testing.T) {
	proposed := day(2026, 9, 1)
	resolved, ok := NextFreeDay(proposed, map[string]bool{}, 365)
	if !ok {
		t.Fatal("Expected a free day")
	}
	if !resolved.Equal(proposed) {
		t.Errorf("Expected the proposed date unchanged, got %v", resolved)
	}
}

func TestNextFreeDayHorizonExhausted(t *testing.T) {
	proposed := day(2026, 9, 1)
	occupied := make(map[string]bool)
	for i := 0; i <= 400; i++ {
		occupied[DayKey(proposed.AddDate(0, 0, i))] = true
	}

	resolved, ok := NextFreeDay(proposed, occupied, 365)
	if ok {
		t.Fatal("Expected horizon exhaustion")
	}
	// Pragmatic fallback: the original proposal, collision permitted.
	if !resolved.Equal(proposed) {
		t.Errorf("Expected fallback to proposed date, got %v", resolved)
	}
}

func TestNextFreeDayNormalizesTimeOfDay(t *testing.T) {
	proposed := time.Date(2026, 9, 1, 16, 30, 0, 0, time.UTC)
	resolved, _ := NextFreeDay(proposed, map[string]bool{}, 365)
	if !resolved.Equal(day(2026, 9, 1)) {
		t.Errorf("Expected day-granular result, got %v", resolved)
	}
}

func TestResolverNoSiblingTopics(t *testing.T) {
	resolver := NewResolver(
		&fakeTopicSource{topics: map[string][]string{"s1": {"t1"}}},
		&fakeScheduleSource{},
		365,
	)

	proposed := day(2026, 9, 5)
	resolved := resolver.NextAvailableDate(context.Background(), "u1", "s1", proposed, "t1")
	if !resolved.Equal(proposed) {
		t.Errorf("Expected proposed date with no siblings, got %v", resolved)
	}
}

func TestResolverSkipsOccupiedSiblingDays(t *testing.T) {
	proposed := day(2026, 9, 5)
	resolver := NewResolver(
		&fakeTopicSource{topics: map[string][]string{"s1": {"t1", "t2", "t3"}}},
		&fakeScheduleSource{schedules: []models.ReviewSchedule{
			{UserID: "u1", TopicID: "t2", NextReviewAt: proposed},
			{UserID: "u1", TopicID: "t3", NextReviewAt: proposed.AddDate(0, 0, 1).Add(9 * time.Hour)},
		}},
		365,
	)

	resolved := resolver.NextAvailableDate(context.Background(), "u1", "s1", proposed, "t1")
	if !resolved.Equal(proposed.AddDate(0, 0, 2)) {
		t.Errorf("Expected D+2 past two occupied days, got %v", resolved)
	}
}

func TestResolverIgnoresOwnTopicRow(t *testing.T) {
	proposed := day(2026, 9, 5)
	resolver := NewResolver(
		&fakeTopicSource{topics: map[string][]string{"s1": {"t1", "t2"}}},
		&fakeScheduleSource{schedules: []models.ReviewSchedule{
			// Only the rescheduled topic itself occupies the day.
			{UserID: "u1", TopicID: "t1", NextReviewAt: proposed},
		}},
		365,
	)

	resolved := resolver.NextAvailableDate(context.Background(), "u1", "s1", proposed, "t1")
	if !resolved.Equal(proposed) {
		t.Errorf("Own row must not count as a conflict, got %v", resolved)
	}
}

func TestResolverNeverFails(t *testing.T) {
	proposed := day(2026, 9, 5)

	testCases := []struct {
		name      string
		topics    *fakeTopicSource
		schedules *fakeScheduleSource
	}{
		{
			"topic lookup error",
			&fakeTopicSource{err: errors.New("curriculum store down")},
			&fakeScheduleSource{},
		},
		{
			"schedule lookup error",
			&fakeTopicSource{topics: map[string][]string{"s1": {"t1", "t2"}}},
			&fakeScheduleSource{err: errors.New("schedule store down")},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resolver := NewResolver(tc.topics, tc.schedules, 365)
			resolved := resolver.NextAvailableDate(context.Background(), "u1", "s1", proposed, "t1")
			if !resolved.Equal(proposed) {
				t.Errorf("Expected degraded fallback to proposed date, got %v", resolved)
			}
		})
	}
}
