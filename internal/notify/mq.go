package notify

import (
	"context"
	"encoding/json"

	"github.com/campushub/backend/internal/mq"
)

// EmailJob is the payload consumed by the mailer worker.
type EmailJob struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// MQNotifier publishes email jobs to a broker channel instead of
// talking SMTP itself.
type MQNotifier struct {
	queue   *mq.MQ
	channel string
	from    string
}

func NewMQNotifier(queue *mq.MQ, channel, from string) *MQNotifier {
	return &MQNotifier{queue: queue, channel: channel, from: from}
}

func (n *MQNotifier) Send(ctx context.Context, recipient, subject, body string) error {
	payload, err := json.Marshal(EmailJob{
		From:    n.from,
		To:      recipient,
		Subject: subject,
		Body:    body,
	})
	if err != nil {
		return err
	}
	_, err = n.queue.Publish(ctx, n.channel, payload, map[string]string{"kind": "email"})
	return err
}
