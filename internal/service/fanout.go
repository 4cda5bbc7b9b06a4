package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/repository"
)

type FanoutConfig struct {
	// DedupWindow guards winner/seller/loser notifications.
	DedupWindow time.Duration
	// ViewerDedupWindow guards the wider no-winner viewer broadcast.
	ViewerDedupWindow time.Duration
}

// NotificationFanout computes settlement audiences and emits one notification
// per (recipient, event type, listing), skipping duplicates inside the dedup
// window. Every emission is independently fallible: one failed recipient never
// blocks the rest.
type NotificationFanout struct {
	notifications repository.NotificationRepository
	views         repository.ViewRepository
	cfg           FanoutConfig
	metrics       *metrics.EngineMetrics
	log           logger.Logger
}

func NewNotificationFanout(
	notifications repository.NotificationRepository,
	views repository.ViewRepository,
	cfg FanoutConfig,
	m *metrics.EngineMetrics,
	log logger.Logger,
) *NotificationFanout {
	return &NotificationFanout{
		notifications: notifications,
		views:         views,
		cfg:           cfg,
		metrics:       m,
		log:           log,
	}
}

// FanOutWinner notifies the settlement audience of an expired listing with a
// winner: the winner (payment required), the seller (winner determined), and
// everyone else who acted on or viewed the listing (lost).
func (f *NotificationFanout) FanOutWinner(ctx context.Context, listing *entity.Listing, actions []*entity.Action) {
	winner := listing.Winner
	if winner == nil {
		f.log.Errorf("FanOutWinner called without a winner for listing %s", listing.ID)
		return
	}

	f.emit(ctx, winner.UserID, entity.NotificationPaymentRequired, listing,
		"Payment required",
		fmt.Sprintf("You won \"%s\" with %s for ₱%.2f. Complete your payment before the timeout.", listing.Title, winner.Action, winner.Amount),
		f.cfg.DedupWindow)

	f.emit(ctx, listing.SellerID, entity.NotificationWinner, listing,
		"Winner determined",
		fmt.Sprintf("\"%s\" expired with a winner: %s (%s, ₱%.2f).", listing.Title, winner.Name, winner.Action, winner.Amount),
		f.cfg.DedupWindow)

	for _, userID := range f.losers(ctx, listing, actions, winner.UserID) {
		f.emit(ctx, userID, entity.NotificationExpiredLost, listing,
			"Listing expired",
			fmt.Sprintf("\"%s\" has expired. Another buyer won this one.", listing.Title),
			f.cfg.DedupWindow)
	}
}

// FanOutNoWinner notifies the seller and all viewers that the listing expired
// without any qualifying action.
func (f *NotificationFanout) FanOutNoWinner(ctx context.Context, listing *entity.Listing) {
	f.emit(ctx, listing.SellerID, entity.NotificationNoWinner, listing,
		"Listing expired without a winner",
		fmt.Sprintf("\"%s\" expired without any claims or bids.", listing.Title),
		f.cfg.DedupWindow)

	viewers, err := f.views.ListViewerIDs(ctx, listing.ID)
	if err != nil {
		f.log.Errorf("Failed to list viewers for listing %s: %v", listing.ID, err)
		return
	}
	for _, viewerID := range viewers {
		if viewerID == listing.SellerID {
			continue
		}
		f.emit(ctx, viewerID, entity.NotificationExpiredNoWinner, listing,
			"Listing expired",
			fmt.Sprintf("\"%s\" has expired without a winner.", listing.Title),
			f.cfg.ViewerDedupWindow)
	}
}

// losers is the union of distinct actors and distinct viewers, minus the
// winner.
func (f *NotificationFanout) losers(ctx context.Context, listing *entity.Listing, actions []*entity.Action, winnerID string) []string {
	seen := make(map[string]bool)
	var audience []string

	appendUser := func(userID string) {
		if userID == "" || userID == winnerID || seen[userID] {
			return
		}
		seen[userID] = true
		audience = append(audience, userID)
	}

	for _, a := range actions {
		appendUser(a.ActorID)
	}

	viewers, err := f.views.ListViewerIDs(ctx, listing.ID)
	if err != nil {
		// Actors are still notified; viewers retry on the next sweep's
		// fan-out, which dedups against what was already sent.
		f.log.Errorf("Failed to list viewers for listing %s: %v", listing.ID, err)
		return audience
	}
	for _, viewerID := range viewers {
		appendUser(viewerID)
	}
	return audience
}

// emit writes one notification unless an equivalent one already exists inside
// the dedup window. Failures are logged and swallowed.
func (f *NotificationFanout) emit(ctx context.Context, recipientID string, notifType entity.NotificationType, listing *entity.Listing, title, body string, window time.Duration) {
	if recipientID == "" {
		return
	}

	since := time.Now().Add(-window)
	existingID, err := f.notifications.FindRecent(ctx, recipientID, notifType, listing.ID, since)
	if err == nil {
		f.log.Debugf("Skipping duplicate %s notification for %s on listing %s (existing %s)", notifType, recipientID, listing.ID, existingID)
		f.metrics.NotificationsTotal.WithLabelValues("deduped").Inc()
		return
	}
	if !errors.Is(err, repository.ErrNotFound) {
		f.log.Errorf("Duplicate check failed for %s notification to %s on listing %s: %v", notifType, recipientID, listing.ID, err)
		// Fall through and attempt the write; a duplicate is a lower-severity
		// failure than a lost notification.
	}

	notification := &entity.Notification{
		RecipientID: recipientID,
		Title:       title,
		Body:        body,
		Type:        notifType,
		ListingID:   listing.ID,
		Data: map[string]string{
			"type":       string(notifType),
			"listing_id": listing.ID,
		},
		CreatedAt: time.Now().UTC(),
	}

	if _, err := f.notifications.Create(ctx, notification); err != nil {
		f.log.Errorf("Failed to create %s notification for %s on listing %s: %v", notifType, recipientID, listing.ID, err)
		f.metrics.NotificationsTotal.WithLabelValues("error").Inc()
		return
	}
	f.metrics.NotificationsTotal.WithLabelValues("created").Inc()
}
