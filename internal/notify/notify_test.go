package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/campushub/backend/internal/mq"
)

type fakeBackend struct {
	channel string
	data    []byte
	attrs   map[string]string
	err     error
}

func (b *fakeBackend) Publish(_ context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	b.channel = channel
	b.data = data
	b.attrs = attrs
	return "msg-1", b.err
}

func (b *fakeBackend) Subscribe(context.Context, string, mq.Handler) error { return nil }
func (b *fakeBackend) Close() error                                       { return nil }

func TestMQNotifierPublishesEmailJob(t *testing.T) {
	backend := &fakeBackend{}
	notifier := NewMQNotifier(mq.New(backend), "notifications", "no-reply@campushub.io")

	err := notifier.Send(context.Background(), "alice@x.com", "Password reset", "click the link")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if backend.channel != "notifications" {
		t.Errorf("channel = %q, want notifications", backend.channel)
	}
	if backend.attrs["kind"] != "email" {
		t.Errorf("kind attr = %q, want email", backend.attrs["kind"])
	}

	var job EmailJob
	if err := json.Unmarshal(backend.data, &job); err != nil {
		t.Fatalf("unmarshal job: %v", err)
	}
	if job.To != "alice@x.com" || job.From != "no-reply@campushub.io" {
		t.Errorf("addresses = %q -> %q", job.From, job.To)
	}
	if job.Subject != "Password reset" || job.Body != "click the link" {
		t.Errorf("content = %q / %q", job.Subject, job.Body)
	}
}

func TestMQNotifierPropagatesPublishError(t *testing.T) {
	backend := &fakeBackend{err: errors.New("broker down")}
	notifier := NewMQNotifier(mq.New(backend), "notifications", "no-reply@campushub.io")

	if err := notifier.Send(context.Background(), "alice@x.com", "s", "b"); err == nil {
		t.Fatal("want publish error to surface")
	}
}
