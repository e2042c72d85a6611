package mastery

import (
	"math"
	"sort"
	"time"

	"mastery-service/internal/models"
)

// Calculator derives bounded mastery scores from a user's recent
// attempt history. It holds configuration only, no per-user state, so a
// single instance is safe to share across concurrent pipelines.
type Calculator struct {
	config *EngineConfig
}

// NewCalculator creates a calculator. A nil config selects the defaults.
func NewCalculator(config *EngineConfig) *Calculator {
	if config == nil {
		config = DefaultEngineConfig()
	}
	return &Calculator{config: config}
}

// ScoreTopics groups the attempt window by topic and recomputes each
// touched topic's mastery. Topics absent from the window are not
// returned: inactivity alone never regresses a stored level. The result
// is ordered by topic id so repeated runs over the same window are
// byte-for-byte identical.
func (c *Calculator) ScoreTopics(attempts []models.Attempt, now time.Time) []TopicScore {
	byTopic := make(map[string][]models.Attempt)
	for _, attempt := range attempts {
		byTopic[attempt.TopicID] = append(byTopic[attempt.TopicID], attempt)
	}

	scores := make([]TopicScore, 0, len(byTopic))
	for topicID, topicAttempts := range byTopic {
		scores = append(scores, c.scoreTopic(topicID, topicAttempts, now))
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].TopicID < scores[j].TopicID })
	return scores
}

func (c *Calculator) scoreTopic(topicID string, attempts []models.Attempt, now time.Time) TopicScore {
	correct := 0
	for _, attempt := range attempts {
		if attempt.IsCorrect {
			correct++
		}
	}
	accuracy := float64(correct) / float64(len(attempts))
	recency := c.recencyScore(attempts, now)

	weightSum := c.config.AccuracyWeight + c.config.RecencyWeight
	level := 100 * (c.config.AccuracyWeight*accuracy + c.config.RecencyWeight*recency) / weightSum

	return TopicScore{
		TopicID:      topicID,
		SubjectID:    attempts[0].SubjectID,
		Level:        clampLevel(level),
		Accuracy:     accuracy,
		RecencyScore: recency,
		Attempts:     len(attempts),
	}
}

// recencyScore sums an exponentially decayed weight per attempt and
// squashes the mass into (0,1): frequent recent practice approaches 1,
// sparse stale practice stays near 0. Ages are taken at whole-day
// granularity, so two runs on the same calendar day with no new
// attempts produce identical scores.
func (c *Calculator) recencyScore(attempts []models.Attempt, now time.Time) float64 {
	halfLifeDays := c.config.RecencyHalfLife.Hours() / 24
	if halfLifeDays <= 0 {
		halfLifeDays = 7
	}

	mass := 0.0
	for _, attempt := range attempts {
		age := ageInDays(attempt.AttemptedAt, now)
		mass += math.Pow(0.5, age/halfLifeDays)
	}
	return mass / (mass + c.config.RecencySaturation)
}

// SubjectLevel rolls topic levels up into one subject score using the
// curriculum weightage per topic. Topics without weightage carry zero
// weight; if no weightage data exists at all the roll-up falls back to
// an unweighted mean.
func SubjectLevel(topicLevels map[string]float64, weightages map[string]float64) float64 {
	if len(topicLevels) == 0 {
		return 0
	}

	weightedSum := 0.0
	totalWeight := 0.0
	for topicID, level := range topicLevels {
		if w, ok := weightages[topicID]; ok && w > 0 {
			weightedSum += w * level
			totalWeight += w
		}
	}
	if totalWeight > 0 {
		return clampLevel(weightedSum / totalWeight)
	}

	sum := 0.0
	for _, level := range topicLevels {
		sum += level
	}
	return clampLevel(sum / float64(len(topicLevels)))
}

func ageInDays(at, now time.Time) float64 {
	days := now.Sub(at).Hours() / 24
	if days < 0 {
		return 0
	}
	return math.Floor(days)
}

func clampLevel(level float64) float64 {
	if level < 0 {
		return 0
	}
	if level > 100 {
		return 100
	}
	return level
}
