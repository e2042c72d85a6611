package repository

import (
	"context"

	"mastery-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TopicMasteryRepository struct {
	Col *mongo.Collection
}

func NewTopicMasteryRepository(db *mongo.Database) *TopicMasteryRepository {
	return &TopicMasteryRepository{Col: db.Collection("topic_mastery")}
}

func (r *TopicMasteryRepository) FindByUser(ctx context.Context, userID string) ([]models.TopicMastery, error) {
	cur, err := r.Col.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var records []models.TopicMastery
	for cur.Next(ctx) {
		var record models.TopicMastery
		if err := cur.Decode(&record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, cur.Err()
}

func (r *TopicMasteryRepository) FindByUserAndSubject(ctx context.Context, userID, subjectID string) ([]models.TopicMastery, error) {
	cur, err := r.Col.Find(ctx, bson.M{"user_id": userID, "subject_id": subjectID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var records []models.TopicMastery
	for cur.Next(ctx) {
		var record models.TopicMastery
		if err := cur.Decode(&record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, cur.Err()
}

func (r *TopicMasteryRepository) FindByUserAndTopic(ctx context.Context, userID, topicID string) (*models.TopicMastery, error) {
	var record models.TopicMastery
	err := r.Col.FindOne(ctx, bson.M{"user_id": userID, "topic_id": topicID}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Upsert writes the row keyed by (user_id, topic_id). One logical row
// per pair; last writer wins.
func (r *TopicMasteryRepository) Upsert(ctx context.Context, m *models.TopicMastery) error {
	filter := bson.M{"user_id": m.UserID, "topic_id": m.TopicID}
	update := bson.M{"$set": bson.M{
		"user_id":         m.UserID,
		"topic_id":        m.TopicID,
		"subject_id":      m.SubjectID,
		"level":           m.Level,
		"accuracy":        m.Accuracy,
		"recency_score":   m.RecencyScore,
		"window_attempts": m.WindowAttempts,
		"computed_at":     m.ComputedAt,
	}}
	_, err := r.Col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}
