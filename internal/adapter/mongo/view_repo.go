package mongo

import (
	"context"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const viewCollectionName = "listing_views"

type viewRepository struct {
	collection *mongo.Collection
}

func NewViewRepository(client *mongo.Client, cfg config.MongoDBConfig) repository.ViewRepository {
	return &viewRepository{
		collection: client.Database(cfg.Database).Collection(viewCollectionName),
	}
}

func (r *viewRepository) ListViewerIDs(ctx context.Context, listingID string) ([]string, error) {
	values, err := r.collection.Distinct(ctx, "viewer_id", bson.M{"listing_id": listingID})
	if err != nil {
		return nil, fmt.Errorf("failed to list viewers for listing %s: %w", listingID, err)
	}

	viewers := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			viewers = append(viewers, s)
		}
	}
	return viewers, nil
}
