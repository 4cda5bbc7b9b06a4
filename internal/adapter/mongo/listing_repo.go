package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const listingCollectionName = "listings"

type listingRepository struct {
	collection *mongo.Collection
}

func NewListingRepository(client *mongo.Client, cfg config.MongoDBConfig) repository.ListingRepository {
	return &listingRepository{
		collection: client.Database(cfg.Database).Collection(listingCollectionName),
	}
}

func (r *listingRepository) FindActive(ctx context.Context) ([]*entity.Listing, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"status": entity.StatusActive})
	if err != nil {
		return nil, fmt.Errorf("failed to find active listings: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode active listings: %w", err)
	}

	listings := make([]*entity.Listing, len(docs))
	for i := range docs {
		listings[i] = docs[i].toEntity()
	}
	return listings, nil
}

func (r *listingRepository) GetByID(ctx context.Context, listingID string) (*entity.Listing, error) {
	objID, err := primitive.ObjectIDFromHex(listingID)
	if err != nil {
		return nil, fmt.Errorf("invalid listing ID format: %w", repository.ErrNotFound)
	}

	var doc listingDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get listing %s: %w", listingID, err)
	}
	return doc.toEntity(), nil
}

// Settle performs the exactly-once expiration write. The filter re-asserts
// that the listing is still active and unlocked, so a concurrent user lock or
// a racing sweep from another process loses cleanly: matched-count 0 maps to
// ErrAlreadySettled and the caller skips.
func (r *listingRepository) Settle(ctx context.Context, params repository.SettleListingParams) error {
	objID, err := primitive.ObjectIDFromHex(params.ListingID)
	if err != nil {
		return fmt.Errorf("invalid listing ID format: %w", repository.ErrNotFound)
	}

	filter := bson.M{
		"_id":    objID,
		"status": entity.StatusActive,
		"$or": bson.A{
			bson.M{"locked_by": bson.M{"$exists": false}},
			bson.M{"locked_by": ""},
		},
	}

	set := bson.M{
		"status":     entity.StatusExpired,
		"expired_at": params.ExpiredAt.UTC(),
		"updated_at": params.ExpiredAt.UTC(),
	}
	if params.Winner != nil {
		set["winner"] = params.Winner
	}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to settle listing %s: %w", params.ListingID, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrAlreadySettled
	}
	return nil
}
