package mastery

import "time"

// EngineConfig holds the scoring knobs for the mastery calculator.
type EngineConfig struct {
	// AttemptWindowDays bounds how far back the attempt window reaches.
	AttemptWindowDays int `json:"attempt_window_days"`
	// AttemptFetchLimit caps how many attempts a single recomputation reads.
	AttemptFetchLimit int64 `json:"attempt_fetch_limit"`
	// AccuracyWeight and RecencyWeight blend the two components; they are
	// normalized by their sum, so they need not add up to one.
	AccuracyWeight float64 `json:"accuracy_weight"`
	RecencyWeight  float64 `json:"recency_weight"`
	// RecencyHalfLife is the age at which an attempt's recency weight
	// halves.
	RecencyHalfLife time.Duration `json:"recency_half_life"`
	// RecencySaturation is the decayed-weight mass at which the
	// recency/frequency component reaches 0.5; more frequent recent
	// practice pushes the component toward 1.
	RecencySaturation float64 `json:"recency_saturation"`
}

// TopicScore is the recomputed mastery for one topic touched by the
// attempt window.
type TopicScore struct {
	TopicID      string  `json:"topic_id"`
	SubjectID    string  `json:"subject_id"`
	Level        float64 `json:"level"`
	Accuracy     float64 `json:"accuracy"`
	RecencyScore float64 `json:"recency_score"`
	Attempts     int     `json:"attempts"`
}

// DefaultEngineConfig returns the production defaults: a 30-day window,
// accuracy-dominant blend, one-week recency half-life.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		AttemptWindowDays: 30,
		AttemptFetchLimit: 200,
		AccuracyWeight:    0.7,
		RecencyWeight:     0.3,
		RecencyHalfLife:   7 * 24 * time.Hour,
		RecencySaturation: 5.0,
	}
}
