package batch

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"mastery-service/internal/models"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// UserSource pages the eligible-user population: active users with an
// assigned stream, least-recently-updated first.
type UserSource interface {
	CountEligible(ctx context.Context) (int64, error)
	FindEligible(ctx context.Context, offset, limit int64) ([]models.User, error)
}

// Pipeline is one user's mastery + scheduling pass.
type Pipeline interface {
	RunForUser(ctx context.Context, userID, stream string) error
}

type Config struct {
	DefaultBatchSize int
	Concurrency      int
	UserTimeout      time.Duration
}

func DefaultConfig() Config {
	return Config{
		DefaultBatchSize: 10,
		Concurrency:      5,
		UserTimeout:      60 * time.Second,
	}
}

// Stats is the aggregate outcome of a batch pass. A degraded run shows
// up here as a non-zero Failed count; it is never an error.
type Stats struct {
	RunID         string    `json:"run_id"`
	Processed     int       `json:"processed"`
	Succeeded     int       `json:"succeeded"`
	Failed        int       `json:"failed"`
	FailedUserIDs []string  `json:"failed_user_ids,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

func (s *Stats) merge(other *Stats) {
	s.Processed += other.Processed
	s.Succeeded += other.Succeeded
	s.Failed += other.Failed
	s.FailedUserIDs = append(s.FailedUserIDs, other.FailedUserIDs...)
}

// Orchestrator fans the per-user pipeline out over the eligible
// population with bounded parallelism. Users are independent; chunking
// exists purely to cap concurrent load on the attempt store.
type Orchestrator struct {
	users    UserSource
	pipeline Pipeline
	config   Config
}

func NewOrchestrator(users UserSource, pipeline Pipeline, config Config) *Orchestrator {
	if config.DefaultBatchSize <= 0 {
		config.DefaultBatchSize = 10
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 5
	}
	if config.UserTimeout <= 0 {
		config.UserTimeout = 60 * time.Second
	}
	return &Orchestrator{users: users, pipeline: pipeline, config: config}
}

// ProcessUserBatch runs one bounded page. A single user's failure is
// recorded in the returned stats and never aborts the page; only a
// failure to read the user directory itself propagates.
func (o *Orchestrator) ProcessUserBatch(ctx context.Context, batchSize, offset int64) (*Stats, error) {
	if batchSize <= 0 {
		batchSize = int64(o.config.DefaultBatchSize)
	}

	stats := &Stats{RunID: uuid.NewString(), StartedAt: time.Now()}
	users, err := o.users.FindEligible(ctx, offset, batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load user page at offset %d: %w", offset, err)
	}

	for start := 0; start < len(users); start += o.config.Concurrency {
		end := start + o.config.Concurrency
		if end > len(users) {
			end = len(users)
		}
		o.processChunk(ctx, users[start:end], stats)
	}

	stats.FinishedAt = time.Now()
	log.Printf("Batch %s: processed %d users (%d succeeded, %d failed) at offset %d",
		stats.RunID, stats.Processed, stats.Succeeded, stats.Failed, offset)
	return stats, nil
}

// processChunk runs one concurrency chunk to completion. The Wait call
// is the chunk barrier: the next chunk starts only after every pipeline
// in this one has settled, which caps peak concurrency deterministically.
func (o *Orchestrator) processChunk(ctx context.Context, users []models.User, stats *Stats) {
	var mu sync.Mutex
	var g errgroup.Group

	for _, user := range users {
		user := user
		g.Go(func() error {
			userCtx, cancel := context.WithTimeout(ctx, o.config.UserTimeout)
			defer cancel()

			err := o.pipeline.RunForUser(userCtx, user.ID, user.Stream)

			mu.Lock()
			defer mu.Unlock()
			stats.Processed++
			if err != nil {
				stats.Failed++
				stats.FailedUserIDs = append(stats.FailedUserIDs, user.ID)
				log.Printf("Batch: pipeline failed for user %s: %v, continuing", user.ID, err)
			} else {
				stats.Succeeded++
			}
			// Failures are recorded, never propagated: returning an error
			// here would cancel the chunk's siblings.
			return nil
		})
	}
	g.Wait()
}

// ProcessAllUsers pages through the whole eligible population until the
// count taken at the start of the run is exhausted.
func (o *Orchestrator) ProcessAllUsers(ctx context.Context) (*Stats, error) {
	total, err := o.users.CountEligible(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count eligible users: %w", err)
	}

	run := &Stats{RunID: uuid.NewString(), StartedAt: time.Now()}
	batchSize := int64(o.config.DefaultBatchSize)
	for offset := int64(0); offset < total; offset += batchSize {
		if err := ctx.Err(); err != nil {
			return run, fmt.Errorf("batch run cancelled at offset %d: %w", offset, err)
		}
		pageStats, err := o.ProcessUserBatch(ctx, batchSize, offset)
		if err != nil {
			return run, err
		}
		run.merge(pageStats)
		// Short page means the population shrank mid-run; stop early
		// instead of issuing empty queries.
		if int64(pageStats.Processed) < batchSize {
			break
		}
	}

	run.FinishedAt = time.Now()
	log.Printf("Batch run %s complete: %d processed, %d succeeded, %d failed",
		run.RunID, run.Processed, run.Succeeded, run.Failed)
	return run, nil
}
