package notify

import (
	"context"
	"log"
)

// NoopNotifier stands in when SMTP is not configured. It logs the message
// and reports ErrDisabled so callers can tell the user nothing was sent.
type NoopNotifier struct{}

func (NoopNotifier) Send(ctx context.Context, msg Message) error {
	if err := validate(msg); err != nil {
		return err
	}
	log.Printf("[NOTIFY] smtp disabled, not sending %q to %v", msg.Subject, msg.To)
	return ErrDisabled
}
