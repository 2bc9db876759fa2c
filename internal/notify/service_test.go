package notify

import (
	"context"
	"errors"
	"testing"
)

type recordingSender struct {
	sent []EmailMessage
	err  error
}

func (r *recordingSender) Send(ctx context.Context, msg EmailMessage) error {
	r.sent = append(r.sent, msg)
	return r.err
}

func TestChannel_Deliver(t *testing.T) {
	sender := &recordingSender{}
	ch := NewChannel("primary", sender, " contact@iglloo.online ")

	if err := ch.Deliver(context.Background(), EmailMessage{To: "ignored@example.com", Subject: "hi"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(sender.sent))
	}
	if sender.sent[0].To != "contact@iglloo.online" {
		t.Errorf("expected channel destination, got %q", sender.sent[0].To)
	}
}

func TestChannel_DeliverWrapsError(t *testing.T) {
	boom := errors.New("relay down")
	ch := NewChannel("secondary", &recordingSender{err: boom}, "inbox@example.com")

	err := ch.Deliver(context.Background(), EmailMessage{Subject: "hi"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestChannel_Unconfigured(t *testing.T) {
	if NewChannel("primary", nil, "x@y.io") != nil {
		t.Fatal("expected nil channel for nil sender")
	}
	var ch *Channel
	if err := ch.Deliver(context.Background(), EmailMessage{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	noDest := NewChannel("primary", &recordingSender{}, "")
	if err := noDest.Deliver(context.Background(), EmailMessage{}); err == nil {
		t.Fatal("expected error for missing destination")
	}
}
