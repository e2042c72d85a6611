package repository

import (
	"context"
	"time"

	"mastery-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ScheduleRepository struct {
	Col *mongo.Collection
}

func NewScheduleRepository(db *mongo.Database) *ScheduleRepository {
	return &ScheduleRepository{Col: db.Collection("review_schedules")}
}

func (r *ScheduleRepository) FindByUser(ctx context.Context, userID string) ([]models.ReviewSchedule, error) {
	opts := options.Find().SetSort(bson.D{{Key: "next_review_at", Value: 1}})
	cur, err := r.Col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var schedules []models.ReviewSchedule
	for cur.Next(ctx) {
		var schedule models.ReviewSchedule
		if err := cur.Decode(&schedule); err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	return schedules, cur.Err()
}

func (r *ScheduleRepository) FindByUserAndTopic(ctx context.Context, userID, topicID string) (*models.ReviewSchedule, error) {
	var schedule models.ReviewSchedule
	err := r.Col.FindOne(ctx, bson.M{"user_id": userID, "topic_id": topicID}).Decode(&schedule)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &schedule, nil
}

// FindByUserAndTopics loads the schedule rows for the given topic set;
// the constraint resolver uses this to build the occupied-day set for a
// subject.
func (r *ScheduleRepository) FindByUserAndTopics(ctx context.Context, userID string, topicIDs []string) ([]models.ReviewSchedule, error) {
	if len(topicIDs) == 0 {
		return nil, nil
	}
	filter := bson.M{"user_id": userID, "topic_id": bson.M{"$in": topicIDs}}
	cur, err := r.Col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var schedules []models.ReviewSchedule
	for cur.Next(ctx) {
		var schedule models.ReviewSchedule
		if err := cur.Decode(&schedule); err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	return schedules, cur.Err()
}

// Upsert writes the row keyed by (user_id, topic_id), preserving
// created_at on existing rows. Concurrent re-entrant runs for the same
// user resolve last-writer-wins; no multi-row transaction is needed.
func (r *ScheduleRepository) Upsert(ctx context.Context, s *models.ReviewSchedule) error {
	filter := bson.M{"user_id": s.UserID, "topic_id": s.TopicID}
	update := bson.M{
		"$set": bson.M{
			"user_id":               s.UserID,
			"topic_id":              s.TopicID,
			"subject_id":            s.SubjectID,
			"next_review_at":        s.NextReviewAt,
			"mastery_at_scheduling": s.MasteryAtScheduling,
			"revision_count":        s.RevisionCount,
			"status":                s.Status,
			"updated_at":            s.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"created_at": s.CreatedAt,
		},
	}
	_, err := r.Col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *ScheduleRepository) UpdateStatus(ctx context.Context, userID, topicID, status string) error {
	filter := bson.M{"user_id": userID, "topic_id": topicID}
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}
	_, err := r.Col.UpdateOne(ctx, filter, update)
	return err
}
