package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/adapter/email"
	natsadapter "github.com/Abdurahmanit/GroupProject/expiration-service/internal/adapter/nats"
	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/repository"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "expiration-service/reconciler"

type settlementEvent struct {
	ListingID  string  `json:"listing_id"`
	SellerID   string  `json:"seller_id"`
	WinnerID   string  `json:"winner_id,omitempty"`
	WinnerName string  `json:"winner_name,omitempty"`
	Action     string  `json:"action,omitempty"`
	Amount     float64 `json:"amount,omitempty"`
	ExpiredAt  string  `json:"expired_at"`
}

// Reconciler runs one full settlement sweep: find listings whose countdown
// elapsed, determine winners, transition each exactly once, and fan out the
// side effects. Multiple process instances may sweep concurrently; safety
// comes from re-read-then-check-then-write against the shared store, never
// from in-memory locking.
type Reconciler struct {
	listings  repository.ListingRepository
	actions   repository.ActionRepository
	activity  repository.ActivityRepository
	fanout    *NotificationFanout
	payments  PaymentTimeoutStarter
	publisher natsadapter.MessagePublisher
	emails    email.EmailSender
	cache     SettledCache
	cfg       config.ExpirationConfig
	metrics   *metrics.EngineMetrics
	log       logger.Logger
}

func NewReconciler(
	listings repository.ListingRepository,
	actions repository.ActionRepository,
	activity repository.ActivityRepository,
	fanout *NotificationFanout,
	payments PaymentTimeoutStarter,
	publisher natsadapter.MessagePublisher,
	emails email.EmailSender,
	cache SettledCache,
	cfg config.ExpirationConfig,
	m *metrics.EngineMetrics,
	log logger.Logger,
) *Reconciler {
	return &Reconciler{
		listings:  listings,
		actions:   actions,
		activity:  activity,
		fanout:    fanout,
		payments:  payments,
		publisher: publisher,
		emails:    emails,
		cache:     cache,
		cfg:       cfg,
		metrics:   m,
		log:       log,
	}
}

// Sweep settles every listing whose expiry falls inside the trailing catch-up
// window. Listings expired longer ago than the window are treated as
// abandoned so a long outage cannot trigger an unbounded catch-up. Failures
// on one candidate never abort the rest of the sweep.
func (r *Reconciler) Sweep(ctx context.Context) error {
	sweepID := uuid.NewString()
	log := r.log.With("sweep_id", sweepID)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "reconciler.sweep",
		trace.WithAttributes(attribute.String("sweep.id", sweepID)))
	defer span.End()

	started := time.Now()
	r.metrics.SweepsTotal.Inc()
	defer func() {
		r.metrics.SweepDuration.Observe(time.Since(started).Seconds())
	}()

	active, err := r.listings.FindActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to query active listings: %w", err)
	}

	now := time.Now().UTC()
	windowStart := now.Add(-r.cfg.CatchUpWindow)

	var settled, skipped, failed int
	for _, listing := range active {
		switch {
		case listing.ExpiresAt.IsZero():
			log.Warnf("Listing %s has an unparseable expiry, skipping", listing.ID)
			r.metrics.CandidatesSkippedTotal.WithLabelValues("bad_expiry").Inc()
			skipped++
			continue
		case listing.ExpiresAt.After(now):
			continue
		case listing.ExpiresAt.Before(windowStart):
			// Older than the catch-up window: abandoned, never reprocessed.
			r.metrics.CandidatesSkippedTotal.WithLabelValues("outside_window").Inc()
			skipped++
			continue
		case listing.IsLockExempt():
			r.metrics.CandidatesSkippedTotal.WithLabelValues("locked").Inc()
			skipped++
			continue
		case r.cache.Contains(ctx, listing.ID):
			r.metrics.CandidatesSkippedTotal.WithLabelValues("cached").Inc()
			skipped++
			continue
		}

		outcome, err := r.settleCandidate(ctx, log, listing.ID, windowStart)
		if err != nil {
			log.Errorf("Failed to settle listing %s: %v", listing.ID, err)
			r.metrics.CandidateErrorsTotal.Inc()
			failed++
			continue
		}
		if outcome {
			settled++
		} else {
			skipped++
		}
	}

	log.Infof("Sweep finished: %d active, %d settled, %d skipped, %d failed", len(active), settled, skipped, failed)
	return nil
}

// settleCandidate re-validates one candidate against the live store and, if
// every fence passes, performs the settlement and its side effects. Returns
// true when a settlement happened.
func (r *Reconciler) settleCandidate(ctx context.Context, log logger.Logger, listingID string, windowStart time.Time) (bool, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "reconciler.settle",
		trace.WithAttributes(attribute.String("listing.id", listingID)))
	defer span.End()

	// Fresh read: the first pass over the store may be stale by the time this
	// candidate is reached, and a user lock can land in between.
	listing, err := r.listings.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warnf("Listing %s disappeared mid-sweep, skipping", listingID)
			return false, nil
		}
		return false, err
	}

	if listing.Status != entity.StatusActive || listing.IsLockExempt() {
		log.Debugf("Listing %s changed state mid-sweep (status=%s, locked_by=%q), skipping", listingID, listing.Status, listing.LockedBy)
		r.metrics.CandidatesSkippedTotal.WithLabelValues("state_changed").Inc()
		return false, nil
	}

	alreadySettled, err := r.activity.HasSettlementEntry(ctx, listingID)
	if err != nil {
		return false, fmt.Errorf("settlement fence check failed: %w", err)
	}
	if alreadySettled {
		log.Debugf("Listing %s already carries a settlement entry, skipping", listingID)
		r.cache.Add(ctx, listingID)
		return false, nil
	}

	recentlyLocked, err := r.actions.HasLockSince(ctx, listingID, windowStart)
	if err != nil {
		return false, fmt.Errorf("lock activity check failed: %w", err)
	}
	if recentlyLocked {
		log.Debugf("Listing %s had a recent lock action, skipping", listingID)
		r.metrics.CandidatesSkippedTotal.WithLabelValues("recent_lock").Inc()
		return false, nil
	}

	actions, err := r.actions.ListByListing(ctx, listingID)
	if err != nil {
		return false, fmt.Errorf("failed to read action log: %w", err)
	}

	winner := ResolveWinner(actions)
	expiredAt := time.Now().UTC()

	err = r.listings.Settle(ctx, repository.SettleListingParams{
		ListingID: listingID,
		Winner:    winner,
		ExpiredAt: expiredAt,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadySettled) {
			// A concurrent pass or a user action won the race. Not an error.
			log.Debugf("Listing %s settled concurrently elsewhere, skipping", listingID)
			r.cache.Add(ctx, listingID)
			return false, nil
		}
		return false, fmt.Errorf("settlement write failed: %w", err)
	}

	listing.Status = entity.StatusExpired
	listing.Winner = winner
	listing.ExpiredAt = expiredAt

	// Side effects run only after the status mutation so a racing pass sees a
	// non-active listing as early as possible. Each one is best-effort: the
	// notifications dedup on retry and the listing itself is already settled.
	if winner != nil {
		r.finishWithWinner(ctx, log, listing, actions)
	} else {
		r.finishNoWinner(ctx, log, listing)
	}

	r.cache.Add(ctx, listingID)
	return true, nil
}

func (r *Reconciler) finishWithWinner(ctx context.Context, log logger.Logger, listing *entity.Listing, actions []*entity.Action) {
	winner := listing.Winner
	log.Infof("Listing %s expired with winner %s (%s, ₱%.2f)", listing.ID, winner.Name, winner.Action, winner.Amount)
	r.metrics.SettlementsTotal.WithLabelValues("winner").Inc()

	r.fanout.FanOutWinner(ctx, listing, actions)

	if err := r.payments.Start(ctx, listing.ID, winner.UserID, winner.Action, winner.Amount); err != nil {
		log.Errorf("Failed to start payment timeout for listing %s: %v", listing.ID, err)
	}

	if _, err := r.activity.Create(ctx, &entity.ActivityEntry{
		ListingID: listing.ID,
		Label:     entity.ActivityExpiredWinner,
		Details:   fmt.Sprintf("Won by %s (%s) for ₱%.2f", winner.Name, winner.Action, winner.Amount),
		System:    true,
		CreatedAt: listing.ExpiredAt,
	}); err != nil {
		log.Errorf("Failed to write settlement activity for listing %s: %v", listing.ID, err)
	}

	if err := r.publisher.Publish(ctx, natsadapter.SubjectListingExpiredWinner, settlementEvent{
		ListingID:  listing.ID,
		SellerID:   listing.SellerID,
		WinnerID:   winner.UserID,
		WinnerName: winner.Name,
		Action:     string(winner.Action),
		Amount:     winner.Amount,
		ExpiredAt:  listing.ExpiredAt.Format(time.RFC3339),
	}); err != nil {
		log.Errorf("Failed to publish settlement event for listing %s: %v", listing.ID, err)
	}

	r.emailSeller(ctx, log, listing,
		"Your listing expired with a winner",
		fmt.Sprintf("Your listing \"%s\" expired. Winner: %s (%s) for ₱%.2f.", listing.Title, winner.Name, winner.Action, winner.Amount))
}

func (r *Reconciler) finishNoWinner(ctx context.Context, log logger.Logger, listing *entity.Listing) {
	log.Infof("Listing %s expired without a winner", listing.ID)
	r.metrics.SettlementsTotal.WithLabelValues("no_winner").Inc()

	r.fanout.FanOutNoWinner(ctx, listing)

	if _, err := r.activity.Create(ctx, &entity.ActivityEntry{
		ListingID: listing.ID,
		Label:     entity.ActivityExpiredNoWinner,
		Details:   "Expired with no qualifying actions",
		System:    true,
		CreatedAt: listing.ExpiredAt,
	}); err != nil {
		log.Errorf("Failed to write settlement activity for listing %s: %v", listing.ID, err)
	}

	if err := r.publisher.Publish(ctx, natsadapter.SubjectListingExpiredNoWinner, settlementEvent{
		ListingID: listing.ID,
		SellerID:  listing.SellerID,
		ExpiredAt: listing.ExpiredAt.Format(time.RFC3339),
	}); err != nil {
		log.Errorf("Failed to publish settlement event for listing %s: %v", listing.ID, err)
	}

	r.emailSeller(ctx, log, listing,
		"Your listing expired",
		fmt.Sprintf("Your listing \"%s\" expired without any claims or bids.", listing.Title))
}

func (r *Reconciler) emailSeller(ctx context.Context, log logger.Logger, listing *entity.Listing, subject, body string) {
	if r.emails == nil || listing.SellerEmail == "" {
		return
	}
	if err := r.emails.Send(ctx, listing.SellerEmail, subject, body); err != nil {
		log.Warnf("Failed to email seller %s for listing %s: %v", listing.SellerID, listing.ID, err)
	}
}
