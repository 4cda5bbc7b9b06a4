package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const actionCollectionName = "listing_actions"

type actionRepository struct {
	collection *mongo.Collection
}

func NewActionRepository(client *mongo.Client, cfg config.MongoDBConfig) repository.ActionRepository {
	return &actionRepository{
		collection: client.Database(cfg.Database).Collection(actionCollectionName),
	}
}

func (r *actionRepository) ListByListing(ctx context.Context, listingID string) ([]*entity.Action, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"listing_id": listingID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list actions for listing %s: %w", listingID, err)
	}
	defer cursor.Close(ctx)

	var docs []actionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode actions for listing %s: %w", listingID, err)
	}

	actions := make([]*entity.Action, len(docs))
	for i := range docs {
		actions[i] = docs[i].toEntity()
	}
	return actions, nil
}

func (r *actionRepository) HasLockSince(ctx context.Context, listingID string, since time.Time) (bool, error) {
	filter := bson.M{
		"listing_id": listingID,
		"kind":       bson.M{"$in": bson.A{"Lock", "Locked", "lock", "locked"}},
		"created_at": bson.M{"$gte": since.UTC()},
	}
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check lock actions for listing %s: %w", listingID, err)
	}
	return count > 0, nil
}
