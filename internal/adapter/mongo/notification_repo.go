package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const notificationCollectionName = "notifications"

type notificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(client *mongo.Client, cfg config.MongoDBConfig) repository.NotificationRepository {
	return &notificationRepository{
		collection: client.Database(cfg.Database).Collection(notificationCollectionName),
	}
}

func (r *notificationRepository) Create(ctx context.Context, notification *entity.Notification) (string, error) {
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}

	res, err := r.collection.InsertOne(ctx, notification)
	if err != nil {
		return "", fmt.Errorf("failed to create notification for %s: %w", notification.RecipientID, err)
	}

	objectID, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("failed to convert inserted ID to ObjectID")
	}
	return objectID.Hex(), nil
}

// FindRecent answers the duplicate check: the query narrows by recipient and
// type with recency ordering, the listing and window match stay client-side
// because listing_id is unindexed in the legacy collection.
func (r *notificationRepository) FindRecent(ctx context.Context, recipientID string, notifType entity.NotificationType, listingID string, since time.Time) (string, error) {
	filter := bson.M{
		"recipient_id": recipientID,
		"type":         notifType,
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(20)

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return "", fmt.Errorf("failed to query notifications for %s: %w", recipientID, err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID        primitive.ObjectID `bson:"_id"`
		ListingID string             `bson:"listing_id"`
		CreatedAt time.Time          `bson:"created_at"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return "", fmt.Errorf("failed to decode notifications for %s: %w", recipientID, err)
	}

	for _, doc := range docs {
		if doc.ListingID == listingID && !doc.CreatedAt.Before(since) {
			return doc.ID.Hex(), nil
		}
	}
	return "", repository.ErrNotFound
}
