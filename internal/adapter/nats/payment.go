package nats

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/domain/entity"
)

type paymentTimeoutEvent struct {
	ListingID string  `json:"listing_id"`
	WinnerID  string  `json:"winner_id"`
	Action    string  `json:"action"`
	Amount    float64 `json:"amount"`
}

// PaymentTimeoutStarter hands the payment countdown to the payment service
// over NATS.
type PaymentTimeoutStarter struct {
	publisher MessagePublisher
}

func NewPaymentTimeoutStarter(publisher MessagePublisher) *PaymentTimeoutStarter {
	return &PaymentTimeoutStarter{publisher: publisher}
}

func (s *PaymentTimeoutStarter) Start(ctx context.Context, listingID, winnerID string, action entity.ActionKind, amount float64) error {
	return s.publisher.Publish(ctx, SubjectPaymentTimeoutStart, paymentTimeoutEvent{
		ListingID: listingID,
		WinnerID:  winnerID,
		Action:    string(action),
		Amount:    amount,
	})
}
