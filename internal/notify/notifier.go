// Package notify delivers messages (shopping lists, digests) to family members.
package notify

import (
	"context"
	"errors"
)

var ErrInvalidMessage = errors.New("invalid message")

// ErrDisabled is returned by notifiers that cannot deliver anything.
var ErrDisabled = errors.New("notifications disabled")

// Attachment is a file sent along with a message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Message struct {
	To          []string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Notifier sends a message. Implementations must be safe for concurrent use.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

func validate(msg Message) error {
	if len(msg.To) == 0 {
		return errors.Join(ErrInvalidMessage, errors.New("no recipients"))
	}
	if msg.Subject == "" {
		return errors.Join(ErrInvalidMessage, errors.New("subject is required"))
	}
	return nil
}
