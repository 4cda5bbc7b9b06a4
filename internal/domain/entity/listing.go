package entity

import (
	"fmt"
	"time"
)

type ListingStatus string

const (
	StatusActive  ListingStatus = "active"
	StatusExpired ListingStatus = "expired"
	StatusLocked  ListingStatus = "locked"
	StatusSold    ListingStatus = "sold"
)

// Winner carries the settlement outcome on an expired listing. It is set
// exactly once, by the reconciler, when the listing leaves the active state
// with at least one qualifying action.
type Winner struct {
	UserID string     `bson:"user_id"`
	Name   string     `bson:"name"`
	Action ActionKind `bson:"action"`
	Amount float64    `bson:"amount"`
}

type Listing struct {
	ID          string        `bson:"_id,omitempty"`
	SellerID    string        `bson:"seller_id"`
	SellerEmail string        `bson:"seller_email,omitempty"`
	Title       string        `bson:"title"`
	Description string        `bson:"description,omitempty"`
	MinePrice   float64       `bson:"mine_price"`
	StealPrice  float64       `bson:"steal_price"`
	LockPrice   float64       `bson:"lock_price"`
	Status      ListingStatus `bson:"status"`
	ExpiresAt   time.Time     `bson:"expires_at"`
	LockedBy    string        `bson:"locked_by,omitempty"`
	LockedAt    time.Time     `bson:"locked_at,omitempty"`
	Winner      *Winner       `bson:"winner,omitempty"`
	ExpiredAt   time.Time     `bson:"expired_at,omitempty"`
	CreatedAt   time.Time     `bson:"created_at"`
	UpdatedAt   time.Time     `bson:"updated_at"`
}

// IsLockExempt reports whether the listing is permanently excluded from
// expiration processing. A lock claim exempts the listing regardless of the
// status field, since the lock may land between two reconciler reads.
func (l *Listing) IsLockExempt() bool {
	return l.LockedBy != "" || l.Status == StatusLocked
}

// Expire moves the listing to its terminal expired state. Only an active,
// unlocked listing may expire; every other transition is rejected so a stale
// caller cannot re-settle an already settled listing.
func (l *Listing) Expire(winner *Winner, at time.Time) error {
	if l.Status != StatusActive {
		return fmt.Errorf("invalid status transition from %s to %s", l.Status, StatusExpired)
	}
	if l.IsLockExempt() {
		return fmt.Errorf("listing %s is locked by %s and cannot expire", l.ID, l.LockedBy)
	}
	l.Status = StatusExpired
	l.Winner = winner
	l.ExpiredAt = at.UTC()
	l.UpdatedAt = at.UTC()
	return nil
}
