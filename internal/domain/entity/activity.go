package entity

import "time"

// Activity labels written by the reconciler. Their presence for a listing is
// the authoritative sign that settlement already happened.
const (
	ActivityExpiredWinner   = "Listing Expired - Winner"
	ActivityExpiredNoWinner = "Listing Expired - No Winner"
)

// ActivityEntry is a durable audit record of something done to a listing.
// System-generated entries double as the settlement idempotency fence.
type ActivityEntry struct {
	ID        string    `bson:"_id,omitempty"`
	ListingID string    `bson:"listing_id"`
	ActorID   string    `bson:"actor_id,omitempty"`
	Label     string    `bson:"label"`
	Details   string    `bson:"details,omitempty"`
	System    bool      `bson:"system"`
	CreatedAt time.Time `bson:"created_at"`
}

// View records that a user opened a listing. Viewers who never acted form the
// "interested but non-participating" notification audience.
type View struct {
	ID        string    `bson:"_id,omitempty"`
	ListingID string    `bson:"listing_id"`
	ViewerID  string    `bson:"viewer_id"`
	ViewedAt  time.Time `bson:"viewed_at"`
}
