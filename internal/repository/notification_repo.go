package repository

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/domain/entity"
)

// NotificationRepository creates notification records and answers the
// duplicate check the fan-out performs before every write.
type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) (string, error)
	// FindRecent returns the ID of an existing notification matching
	// (recipient, type, listing) created at or after the given instant, or
	// ErrNotFound when none exists.
	FindRecent(ctx context.Context, recipientID string, notifType entity.NotificationType, listingID string, since time.Time) (string, error)
}

// ActivityRepository writes audit entries and answers the settlement fence.
type ActivityRepository interface {
	Create(ctx context.Context, e *entity.ActivityEntry) (string, error)
	// HasSettlementEntry reports whether any "Listing Expired - *" entry
	// exists for the listing.
	HasSettlementEntry(ctx context.Context, listingID string) (bool, error)
}
