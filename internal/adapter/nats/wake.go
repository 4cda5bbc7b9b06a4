package nats

import (
	"fmt"

	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/platform/logger"
	"github.com/nats-io/nats.go"
)

// WakeSignal delivers client-foreground events to the scheduler. Mobile
// clients publish to the wake subject when they return to the foreground; the
// scheduler turns each event into a debounced reconciliation pass.
type WakeSignal struct {
	conn    *nats.Conn
	subject string
	log     logger.Logger
}

func NewWakeSignal(conn *nats.Conn, subject string, log logger.Logger) *WakeSignal {
	return &WakeSignal{conn: conn, subject: subject, log: log}
}

// Subscribe registers the handler and returns an unsubscribe func. The
// returned func is safe to call more than once.
func (w *WakeSignal) Subscribe(handler func()) (func(), error) {
	sub, err := w.conn.Subscribe(w.subject, func(msg *nats.Msg) {
		handler()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to wake subject %s: %w", w.subject, err)
	}
	w.log.Infof("Subscribed to wake subject %s", w.subject)

	return func() {
		if err := sub.Unsubscribe(); err != nil && err != nats.ErrBadSubscription {
			w.log.Warnf("Failed to unsubscribe from wake subject %s: %v", w.subject, err)
		}
	}, nil
}
