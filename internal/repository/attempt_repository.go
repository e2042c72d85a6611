package repository

import (
	"context"
	"time"

	"mastery-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AttemptRepository struct {
	Col *mongo.Collection
}

func NewAttemptRepository(db *mongo.Database) *AttemptRepository {
	return &AttemptRepository{Col: db.Collection("attempts")}
}

// FindRecentByUser returns the user's attempts since the given cutoff,
// most recent first, capped at limit. The ordering is stable so repeated
// reads over an unchanged log return the same window.
func (r *AttemptRepository) FindRecentByUser(ctx context.Context, userID string, since time.Time, limit int64) ([]models.Attempt, error) {
	filter := bson.M{
		"user_id":      userID,
		"attempted_at": bson.M{"$gte": since},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "attempted_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)

	cur, err := r.Col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var attempts []models.Attempt
	for cur.Next(ctx) {
		var attempt models.Attempt
		if err := cur.Decode(&attempt); err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, cur.Err()
}
