package repository

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/domain/entity"
)

// ActionRepository reads the append-only action log of a listing.
type ActionRepository interface {
	ListByListing(ctx context.Context, listingID string) ([]*entity.Action, error)
	// HasLockSince reports whether a Lock action was recorded for the listing
	// at or after the given instant.
	HasLockSince(ctx context.Context, listingID string, since time.Time) (bool, error)
}

// ViewRepository reads the per-listing view log.
type ViewRepository interface {
	ListViewerIDs(ctx context.Context, listingID string) ([]string, error)
}
