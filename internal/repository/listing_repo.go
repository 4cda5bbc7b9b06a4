package repository

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/domain/entity"
)

// SettleListingParams carries the exactly-once expiration write. Winner is nil
// for the no-winner outcome.
type SettleListingParams struct {
	ListingID string
	Winner    *entity.Winner
	ExpiredAt time.Time
}

// ListingRepository is the reconciler's view of the listing store. The store
// is shared and multi-writer; Settle must be conditional on the listing still
// being active and unlocked, returning ErrAlreadySettled when the condition
// no longer holds.
type ListingRepository interface {
	FindActive(ctx context.Context) ([]*entity.Listing, error)
	GetByID(ctx context.Context, listingID string) (*entity.Listing, error)
	Settle(ctx context.Context, params SettleListingParams) error
}
