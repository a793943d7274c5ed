// Package notify hands outbound messages (password-reset links and the
// like) to whatever delivers them. Delivery itself happens elsewhere;
// the app only enqueues or, without a broker, logs.
package notify

import (
	"context"
	"log"
)

// Notifier sends a message to a recipient. A failure is reported to
// the caller, who decides whether it is fatal; the reset-request flow
// logs and carries on.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// LogNotifier writes messages to the process log. It is the fallback
// when no broker is configured, useful in development to read reset
// links off the console.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(_ context.Context, recipient, subject, body string) error {
	log.Printf("notify: to=%s subject=%q body=%q", recipient, subject, body)
	return nil
}
