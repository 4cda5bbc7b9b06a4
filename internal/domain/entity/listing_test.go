package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingExpire(t *testing.T) {
	now := time.Now()
	winner := &Winner{UserID: "user-1", Name: "One", Action: ActionMine, Amount: 100}

	l := &Listing{ID: "l1", Status: StatusActive}
	require.NoError(t, l.Expire(winner, now))
	assert.Equal(t, StatusExpired, l.Status)
	assert.Equal(t, winner, l.Winner)
	assert.False(t, l.ExpiredAt.IsZero())

	// Terminal: a second expire is rejected.
	assert.Error(t, l.Expire(winner, now))
}

func TestListingExpireNoWinner(t *testing.T) {
	l := &Listing{ID: "l1", Status: StatusActive}
	require.NoError(t, l.Expire(nil, time.Now()))
	assert.Equal(t, StatusExpired, l.Status)
	assert.Nil(t, l.Winner)
}

func TestListingExpireRejectsNonActive(t *testing.T) {
	for _, status := range []ListingStatus{StatusExpired, StatusLocked, StatusSold} {
		l := &Listing{ID: "l1", Status: status}
		assert.Error(t, l.Expire(nil, time.Now()), "status %s", status)
	}
}

func TestListingExpireRejectsLocked(t *testing.T) {
	l := &Listing{ID: "l1", Status: StatusActive, LockedBy: "user-9"}
	assert.Error(t, l.Expire(nil, time.Now()))
	assert.Equal(t, StatusActive, l.Status)
}

func TestListingIsLockExempt(t *testing.T) {
	assert.False(t, (&Listing{Status: StatusActive}).IsLockExempt())
	assert.True(t, (&Listing{Status: StatusActive, LockedBy: "user-9"}).IsLockExempt())
	assert.True(t, (&Listing{Status: StatusLocked}).IsLockExempt())
}
