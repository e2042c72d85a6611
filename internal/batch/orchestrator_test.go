package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"mastery-service/internal/models"
)

type fakeUserSource struct {
	users []models.User
}

func (f *fakeUserSource) CountEligible(_ context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

func (f *fakeUserSource) FindEligible(_ context.Context, offset, limit int64) ([]models.User, error) {
	if offset >= int64(len(f.users)) {
		return nil, nil
	}
	end := offset + limit
	if end > int64(len(f.users)) {
		end = int64(len(f.users))
	}
	return f.users[offset:end], nil
}

type failingUserSource struct{}

func (failingUserSource) CountEligible(_ context.Context) (int64, error) {
	return 0, errors.New("user directory down")
}

func (failingUserSource) FindEligible(_ context.Context, _, _ int64) ([]models.User, error) {
	return nil, errors.New("user directory down")
}

// recordingPipeline counts invocations per user and fails the ids in
// failFor.
type recordingPipeline struct {
	mu        sync.Mutex
	calls     map[string]int
	inFlight  int
	maxActive int
	failFor   map[string]bool
	delay     time.Duration
}

func newRecordingPipeline() *recordingPipeline {
	return &recordingPipeline{calls: make(map[string]int), failFor: make(map[string]bool)}
}

func (p *recordingPipeline) RunForUser(_ context.Context, userID, _ string) error {
	p.mu.Lock()
	p.calls[userID]++
	p.inFlight++
	if p.inFlight > p.maxActive {
		p.maxActive = p.inFlight
	}
	p.mu.Unlock()

	if p.delay > 0 {
		time.Sleep(p.delay)
	}

	p.mu.Lock()
	p.inFlight--
	fail := p.failFor[userID]
	p.mu.Unlock()

	if fail {
		return errors.New("pipeline blew up")
	}
	return nil
}

func makeUsers(n int) []models.User {
	users := make([]models.User, n)
	for i := range users {
		users[i] = models.User{ID: fmt.Sprintf("user-%03d", i), Stream: "science", IsActive: true}
	}
	return users
}

func TestProcessAllUsersVisitsEveryoneExactlyOnce(t *testing.T) {
	testCases := []struct {
		name      string
		userCount int
		batchSize int
	}{
		{"exact pages", 20, 10},
		{"ragged last page", 23, 10},
		{"single page", 7, 10},
		{"batch of one", 5, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pipeline := newRecordingPipeline()
			orchestrator := NewOrchestrator(
				&fakeUserSource{users: makeUsers(tc.userCount)},
				pipeline,
				Config{DefaultBatchSize: tc.batchSize, Concurrency: 5},
			)

			stats, err := orchestrator.ProcessAllUsers(context.Background())
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if stats.Processed != tc.userCount {
				t.Errorf("Expected %d processed, got %d", tc.userCount, stats.Processed)
			}
			if stats.Succeeded != tc.userCount {
				t.Errorf("Expected %d succeeded, got %d", tc.userCount, stats.Succeeded)
			}
			if len(pipeline.calls) != tc.userCount {
				t.Errorf("Expected %d distinct users visited, got %d", tc.userCount, len(pipeline.calls))
			}
			for userID, count := range pipeline.calls {
				if count != 1 {
					t.Errorf("User %s visited %d times, expected exactly once", userID, count)
				}
			}
		})
	}
}

func TestProcessUserBatchPartialFailureIsolation(t *testing.T) {
	pipeline := newRecordingPipeline()
	pipeline.failFor["user-003"] = true

	orchestrator := NewOrchestrator(
		&fakeUserSource{users: makeUsers(8)},
		pipeline,
		Config{DefaultBatchSize: 10, Concurrency: 3},
	)

	stats, err := orchestrator.ProcessUserBatch(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("A single user's failure must not fail the batch: %v", err)
	}
	if stats.Processed != 8 {
		t.Errorf("Expected all 8 users processed, got %d", stats.Processed)
	}
	if stats.Failed != 1 {
		t.Errorf("Expected 1 failure, got %d", stats.Failed)
	}
	if stats.Succeeded != 7 {
		t.Errorf("Expected 7 successes, got %d", stats.Succeeded)
	}
	if len(stats.FailedUserIDs) != 1 || stats.FailedUserIDs[0] != "user-003" {
		t.Errorf("Expected failed ids [user-003], got %v", stats.FailedUserIDs)
	}
}

func TestProcessUserBatchBoundedConcurrency(t *testing.T) {
	pipeline := newRecordingPipeline()
	pipeline.delay = 20 * time.Millisecond

	orchestrator := NewOrchestrator(
		&fakeUserSource{users: makeUsers(20)},
		pipeline,
		Config{DefaultBatchSize: 20, Concurrency: 4},
	)

	if _, err := orchestrator.ProcessUserBatch(context.Background(), 20, 0); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if pipeline.maxActive > 4 {
		t.Errorf("Concurrency cap exceeded: %d in flight with limit 4", pipeline.maxActive)
	}
}

func TestProcessUserBatchDefaultsBatchSize(t *testing.T) {
	pipeline := newRecordingPipeline()
	orchestrator := NewOrchestrator(
		&fakeUserSource{users: makeUsers(25)},
		pipeline,
		Config{DefaultBatchSize: 10, Concurrency: 5},
	)

	stats, err := orchestrator.ProcessUserBatch(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if stats.Processed != 10 {
		t.Errorf("Expected default batch size 10, processed %d", stats.Processed)
	}
}

func TestProcessUserBatchOffsetPaging(t *testing.T) {
	pipeline := newRecordingPipeline()
	orchestrator := NewOrchestrator(
		&fakeUserSource{users: makeUsers(15)},
		pipeline,
		Config{DefaultBatchSize: 10, Concurrency: 5},
	)

	stats, err := orchestrator.ProcessUserBatch(context.Background(), 10, 10)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if stats.Processed != 5 {
		t.Errorf("Expected the 5 users past the offset, processed %d", stats.Processed)
	}
	if pipeline.calls["user-009"] != 0 {
		t.Error("User before the offset must not be visited")
	}
	if pipeline.calls["user-010"] != 1 {
		t.Error("First user at the offset must be visited")
	}
}

func TestProcessAllUsersDirectoryFailurePropagates(t *testing.T) {
	orchestrator := NewOrchestrator(failingUserSource{}, newRecordingPipeline(), Config{})
	if _, err := orchestrator.ProcessAllUsers(context.Background()); err == nil {
		t.Fatal("Expected total directory loss to propagate")
	}
}
