package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestFanout(notifications *MockNotificationRepository, views *MockViewRepository) *NotificationFanout {
	return NewNotificationFanout(notifications, views, FanoutConfig{
		DedupWindow:       5 * time.Minute,
		ViewerDedupWindow: 24 * time.Hour,
	}, metrics.NewEngineMetrics("test"), &logger.NoOpLogger{})
}

func expiredListing(winner *entity.Winner) *entity.Listing {
	return &entity.Listing{
		ID:        "listing-1",
		SellerID:  "seller-s",
		Title:     "Vintage camera",
		Status:    entity.StatusExpired,
		Winner:    winner,
		ExpiredAt: time.Now().UTC(),
	}
}

func recipientsOf(notifications *MockNotificationRepository) map[string]entity.NotificationType {
	got := make(map[string]entity.NotificationType)
	for _, call := range notifications.Calls {
		if call.Method != "Create" {
			continue
		}
		n := call.Arguments.Get(1).(*entity.Notification)
		got[n.RecipientID] = n.Type
	}
	return got
}

func TestFanOutWinner_Audience(t *testing.T) {
	notifications := new(MockNotificationRepository)
	views := new(MockViewRepository)
	fanout := newTestFanout(notifications, views)

	listing := expiredListing(&entity.Winner{UserID: "user-a", Name: "A", Action: entity.ActionMine, Amount: 100})
	actions := []*entity.Action{
		{ListingID: listing.ID, ActorID: "user-a", ActorName: "A", Kind: entity.ActionMine, Details: "₱100"},
		{ListingID: listing.ID, ActorID: "user-b", ActorName: "B", Kind: entity.ActionBid, Details: "₱120"},
	}

	views.On("ListViewerIDs", mock.Anything, listing.ID).Return([]string{"user-c", "user-d"}, nil)
	notifications.On("FindRecent", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", repository.ErrNotFound)
	notifications.On("Create", mock.Anything, mock.AnythingOfType("*entity.Notification")).Return("notif-id", nil)

	fanout.FanOutWinner(context.Background(), listing, actions)

	got := recipientsOf(notifications)
	assert.Equal(t, map[string]entity.NotificationType{
		"user-a":   entity.NotificationPaymentRequired,
		"seller-s": entity.NotificationWinner,
		"user-b":   entity.NotificationExpiredLost,
		"user-c":   entity.NotificationExpiredLost,
		"user-d":   entity.NotificationExpiredLost,
	}, got)
	notifications.AssertNumberOfCalls(t, "Create", 5)
}

func TestFanOutWinner_WinnerExcludedFromLosers(t *testing.T) {
	notifications := new(MockNotificationRepository)
	views := new(MockViewRepository)
	fanout := newTestFanout(notifications, views)

	listing := expiredListing(&entity.Winner{UserID: "user-a", Name: "A", Action: entity.ActionLock, Amount: 50})
	actions := []*entity.Action{
		{ListingID: listing.ID, ActorID: "user-a", ActorName: "A", Kind: entity.ActionLock, Details: "₱50"},
	}

	// The winner also viewed the listing; they still get only payment_required.
	views.On("ListViewerIDs", mock.Anything, listing.ID).Return([]string{"user-a"}, nil)
	notifications.On("FindRecent", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", repository.ErrNotFound)
	notifications.On("Create", mock.Anything, mock.AnythingOfType("*entity.Notification")).Return("notif-id", nil)

	fanout.FanOutWinner(context.Background(), listing, actions)

	got := recipientsOf(notifications)
	assert.Equal(t, entity.NotificationPaymentRequired, got["user-a"])
	notifications.AssertNumberOfCalls(t, "Create", 2)
}

func TestFanOutWinner_DuplicateSkipped(t *testing.T) {
	notifications := new(MockNotificationRepository)
	views := new(MockViewRepository)
	fanout := newTestFanout(notifications, views)

	listing := expiredListing(&entity.Winner{UserID: "user-a", Name: "A", Action: entity.ActionMine, Amount: 100})

	views.On("ListViewerIDs", mock.Anything, listing.ID).Return([]string{}, nil)
	// Every duplicate check finds an existing notification inside the window.
	notifications.On("FindRecent", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("existing-id", nil)

	fanout.FanOutWinner(context.Background(), listing, nil)
	fanout.FanOutWinner(context.Background(), listing, nil)

	notifications.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFanOutWinner_OneFailureDoesNotBlockOthers(t *testing.T) {
	notifications := new(MockNotificationRepository)
	views := new(MockViewRepository)
	fanout := newTestFanout(notifications, views)

	listing := expiredListing(&entity.Winner{UserID: "user-a", Name: "A", Action: entity.ActionMine, Amount: 100})

	views.On("ListViewerIDs", mock.Anything, listing.ID).Return([]string{"user-c"}, nil)
	notifications.On("FindRecent", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", repository.ErrNotFound)
	// Winner write fails; seller and viewer writes still happen.
	notifications.On("Create", mock.Anything, mock.MatchedBy(func(n *entity.Notification) bool {
		return n.RecipientID == "user-a"
	})).Return("", errors.New("write failed"))
	notifications.On("Create", mock.Anything, mock.MatchedBy(func(n *entity.Notification) bool {
		return n.RecipientID != "user-a"
	})).Return("notif-id", nil)

	fanout.FanOutWinner(context.Background(), listing, nil)

	notifications.AssertNumberOfCalls(t, "Create", 3)
}

func TestFanOutNoWinner_Audience(t *testing.T) {
	notifications := new(MockNotificationRepository)
	views := new(MockViewRepository)
	fanout := newTestFanout(notifications, views)

	listing := expiredListing(nil)

	views.On("ListViewerIDs", mock.Anything, listing.ID).Return([]string{"user-v"}, nil)
	notifications.On("FindRecent", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", repository.ErrNotFound)
	notifications.On("Create", mock.Anything, mock.AnythingOfType("*entity.Notification")).Return("notif-id", nil)

	fanout.FanOutNoWinner(context.Background(), listing)

	got := recipientsOf(notifications)
	assert.Equal(t, map[string]entity.NotificationType{
		"seller-s": entity.NotificationNoWinner,
		"user-v":   entity.NotificationExpiredNoWinner,
	}, got)
	notifications.AssertNumberOfCalls(t, "Create", 2)
}
