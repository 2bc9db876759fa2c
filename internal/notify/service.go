package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Channel is one notification path: a sender bound to a fixed destination.
type Channel struct {
	Name   string
	Sender EmailSender
	To     string
	ToName string
}

// NewChannel returns nil when sender is nil, so optional channels can be
// passed straight through to the intake service.
func NewChannel(name string, sender EmailSender, to string) *Channel {
	if sender == nil {
		return nil
	}
	return &Channel{Name: name, Sender: sender, To: strings.TrimSpace(to)}
}

// Deliver addresses msg to the channel destination and sends it.
func (c *Channel) Deliver(ctx context.Context, msg EmailMessage) error {
	if c == nil || c.Sender == nil {
		return fmt.Errorf("notify: channel has no sender: %w", ErrNotConfigured)
	}
	if c.To == "" {
		return errors.New("notify: channel " + c.Name + " has no destination")
	}
	msg.To = c.To
	msg.ToName = c.ToName
	if err := c.Sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: %s channel: %w", c.Name, err)
	}
	return nil
}
