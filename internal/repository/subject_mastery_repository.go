package repository

import (
	"context"

	"mastery-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SubjectMasteryRepository struct {
	Col *mongo.Collection
}

func NewSubjectMasteryRepository(db *mongo.Database) *SubjectMasteryRepository {
	return &SubjectMasteryRepository{Col: db.Collection("subject_mastery")}
}

func (r *SubjectMasteryRepository) FindByUser(ctx context.Context, userID string) ([]models.SubjectMastery, error) {
	cur, err := r.Col.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var records []models.SubjectMastery
	for cur.Next(ctx) {
		var record models.SubjectMastery
		if err := cur.Decode(&record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, cur.Err()
}

func (r *SubjectMasteryRepository) FindByUserAndSubject(ctx context.Context, userID, subjectID string) (*models.SubjectMastery, error) {
	var record models.SubjectMastery
	err := r.Col.FindOne(ctx, bson.M{"user_id": userID, "subject_id": subjectID}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *SubjectMasteryRepository) Upsert(ctx context.Context, m *models.SubjectMastery) error {
	filter := bson.M{"user_id": m.UserID, "subject_id": m.SubjectID}
	update := bson.M{"$set": bson.M{
		"user_id":     m.UserID,
		"subject_id":  m.SubjectID,
		"level":       m.Level,
		"topic_count": m.TopicCount,
		"computed_at": m.ComputedAt,
	}}
	_, err := r.Col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}
