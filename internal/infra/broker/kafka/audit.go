package kafka

import (
	"context"
	"log/slog"

	"github.com/IBM/sarama"
)

// Dedup reports whether an event was already processed by this consumer.
type Dedup interface {
	Seen(ctx context.Context, eventID string) (bool, error)
}

// EventAuditHandler consumes published domain events and writes an audit
// line for each one, skipping redeliveries via the inbox store.
type EventAuditHandler struct {
	Inbox  Dedup
	Logger *slog.Logger
}

func (h EventAuditHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	eventID := ""
	eventName := ""
	for _, header := range msg.Headers {
		switch string(header.Key) {
		case "event_id":
			eventID = string(header.Value)
		case "event_name":
			eventName = string(header.Value)
		}
	}
	if h.Inbox != nil && eventID != "" {
		seen, err := h.Inbox.Seen(ctx, eventID)
		if err != nil {
			return err
		}
		if seen {
			return nil
		}
	}
	if h.Logger != nil {
		h.Logger.Info("domain event observed",
			"topic", msg.Topic,
			"event", eventName,
			"event_id", eventID,
			"key", string(msg.Key),
		)
	}
	return nil
}
