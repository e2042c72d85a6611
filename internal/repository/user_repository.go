package repository

import (
	"context"

	"mastery-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository struct {
	Col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{Col: db.Collection("users")}
}

func eligibleFilter() bson.M {
	return bson.M{
		"is_active": true,
		"stream":    bson.M{"$nin": bson.A{"", nil}},
	}
}

// CountEligible counts active users with an assigned stream, the
// population a batch pass pages over.
func (r *UserRepository) CountEligible(ctx context.Context) (int64, error) {
	return r.Col.CountDocuments(ctx, eligibleFilter())
}

// FindEligible returns one page of eligible users ordered
// least-recently-updated first, so chronically skipped users come up
// before freshly processed ones.
func (r *UserRepository) FindEligible(ctx context.Context, offset, limit int64) ([]models.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "last_updated", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(offset).
		SetLimit(limit)

	cur, err := r.Col.Find(ctx, eligibleFilter(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	for cur.Next(ctx) {
		var user models.User
		if err := cur.Decode(&user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, cur.Err()
}

// TouchLastUpdated moves the user to the back of the batch ordering
// after a successful pipeline run.
func (r *UserRepository) TouchLastUpdated(ctx context.Context, userID string) error {
	_, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$currentDate": bson.M{"last_updated": true}})
	return err
}
