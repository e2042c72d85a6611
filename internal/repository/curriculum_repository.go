package repository

import (
	"context"

	"mastery-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CurriculumRepository reads the content hierarchy owned by the
// curriculum service: the topic -> subject mapping and the per-topic
// weightage used for subject roll-ups.
type CurriculumRepository struct {
	Topics   *mongo.Collection
	Subjects *mongo.Collection
}

func NewCurriculumRepository(db *mongo.Database) *CurriculumRepository {
	return &CurriculumRepository{
		Topics:   db.Collection("topics"),
		Subjects: db.Collection("subjects"),
	}
}

func (r *CurriculumRepository) FindTopicsBySubject(ctx context.Context, subjectID string) ([]models.Topic, error) {
	cur, err := r.Topics.Find(ctx, bson.M{"subject_id": subjectID, "is_active": true})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var topics []models.Topic
	for cur.Next(ctx) {
		var topic models.Topic
		if err := cur.Decode(&topic); err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}
	return topics, cur.Err()
}

func (r *CurriculumRepository) FindTopicByID(ctx context.Context, topicID string) (*models.Topic, error) {
	var topic models.Topic
	err := r.Topics.FindOne(ctx, bson.M{"_id": topicID}).Decode(&topic)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &topic, nil
}

// TopicIDsForSubject returns just the ids, the shape the constraint
// resolver needs when building a subject's occupied-day set.
func (r *CurriculumRepository) TopicIDsForSubject(ctx context.Context, subjectID string) ([]string, error) {
	topics, err := r.FindTopicsBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(topics))
	for _, topic := range topics {
		ids = append(ids, topic.ID)
	}
	return ids, nil
}
