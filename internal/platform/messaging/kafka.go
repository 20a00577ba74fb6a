package messaging

import (
	"context"
	"log/slog"
	"sync"

	"tribunal/contexts/moderation/report-engine/ports"
)

const subscriberBuffer = 64

// Kafka is the event bus adapter behind the outbox relay. The current
// implementation is in-process publish/subscribe while runtime wiring is
// finalized for external brokers; the relay only depends on the
// EventPublisher/EventSubscriber ports, so swapping in a real client is a
// bootstrap change.
type Kafka struct {
	mu      sync.RWMutex
	topics  map[string][]chan ports.EventEnvelope
	brokers []string
	logger  *slog.Logger
}

func NewKafka(brokers []string, logger *slog.Logger) (*Kafka, error) {
	return &Kafka{
		topics:  make(map[string][]chan ports.EventEnvelope),
		brokers: brokers,
		logger:  logger,
	}, nil
}

func (k *Kafka) Publish(ctx context.Context, topic string, event ports.EventEnvelope) error {
	k.mu.RLock()
	subs := append([]chan ports.EventEnvelope(nil), k.topics[topic]...)
	k.mu.RUnlock()

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub <- event:
		default:
			if k.logger != nil {
				k.logger.Warn("dropping event for slow subscriber",
					"event", "kafka_publish_drop",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"topic", topic,
					"event_id", event.EventID,
				)
			}
		}
	}

	if k.logger != nil {
		k.logger.Info("event published",
			"event", "kafka_publish",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", topic,
			"event_id", event.EventID,
			"event_type", event.EventType,
		)
	}
	return nil
}

func (k *Kafka) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, ports.EventEnvelope) error,
) error {
	ch := make(chan ports.EventEnvelope, subscriberBuffer)

	k.mu.Lock()
	k.topics[topic] = append(k.topics[topic], ch)
	k.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				k.unsubscribe(topic, ch)
				return
			case event := <-ch:
				if err := handler(ctx, event); err != nil && k.logger != nil {
					k.logger.Error("consumer handler failed",
						"event", "kafka_consume_failed",
						"module", "internal/platform/messaging",
						"layer", "platform",
						"topic", topic,
						"consumer_group", consumerGroup,
						"event_id", event.EventID,
						"event_type", event.EventType,
						"error", err.Error(),
					)
				}
			}
		}
	}()
	return nil
}

func (k *Kafka) unsubscribe(topic string, target chan ports.EventEnvelope) {
	k.mu.Lock()
	defer k.mu.Unlock()

	subs := k.topics[topic]
	if len(subs) == 0 {
		return
	}
	kept := make([]chan ports.EventEnvelope, 0, len(subs))
	for _, sub := range subs {
		if sub != target {
			kept = append(kept, sub)
		}
	}
	k.topics[topic] = kept
}
