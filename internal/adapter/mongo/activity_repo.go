package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/repository"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const activityCollectionName = "listing_activity"

type activityRepository struct {
	collection *mongo.Collection
}

func NewActivityRepository(client *mongo.Client, cfg config.MongoDBConfig) repository.ActivityRepository {
	return &activityRepository{
		collection: client.Database(cfg.Database).Collection(activityCollectionName),
	}
}

func (r *activityRepository) Create(ctx context.Context, e *entity.ActivityEntry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	if _, err := r.collection.InsertOne(ctx, e); err != nil {
		return "", fmt.Errorf("failed to create activity entry for listing %s: %w", e.ListingID, err)
	}
	return e.ID, nil
}

func (r *activityRepository) HasSettlementEntry(ctx context.Context, listingID string) (bool, error) {
	filter := bson.M{
		"listing_id": listingID,
		"label": bson.M{"$in": bson.A{
			entity.ActivityExpiredWinner,
			entity.ActivityExpiredNoWinner,
		}},
	}
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check settlement entries for listing %s: %w", listingID, err)
	}
	return count > 0, nil
}
