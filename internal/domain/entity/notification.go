package entity

import "time"

// NotificationType identifies the settlement event a notification reports.
type NotificationType string

const (
	NotificationPaymentRequired NotificationType = "payment_required"
	NotificationWinner          NotificationType = "winner_determined"
	NotificationExpiredLost     NotificationType = "listing_expired_lost"
	NotificationNoWinner        NotificationType = "no_winner"
	NotificationExpiredNoWinner NotificationType = "listing_expired_no_winner"
)

type Notification struct {
	ID          string            `bson:"_id,omitempty"`
	RecipientID string            `bson:"recipient_id"`
	Title       string            `bson:"title"`
	Body        string            `bson:"body"`
	Type        NotificationType  `bson:"type"`
	ListingID   string            `bson:"listing_id"`
	Data        map[string]string `bson:"data,omitempty"`
	Read        bool              `bson:"read"`
	CreatedAt   time.Time         `bson:"created_at"`
}
