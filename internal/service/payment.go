package service

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/domain/entity"
)

// PaymentTimeoutStarter starts the payment countdown for a settled winner.
// The payment service itself is a separate collaborator; the engine only owns
// this call contract.
type PaymentTimeoutStarter interface {
	Start(ctx context.Context, listingID, winnerID string, action entity.ActionKind, amount float64) error
}
