package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "tribunal/contexts/moderation/report-engine/application"
	"tribunal/contexts/moderation/report-engine/ports"
)

// OutboxRelay publishes persisted outbox records to the event bus.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce publishes a bounded batch of pending outbox rows and marks each row
// sent only after broker publish succeeds. It stops on the first failure so
// the retry loop can reprocess remaining rows safely.
func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("moderation outbox list failed",
			"event", "moderation_outbox_list_failed",
			"module", "moderation/report-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if len(pending) == 0 {
		logger.Debug("moderation outbox relay found no pending rows",
			"event", "moderation_outbox_relay_noop",
			"module", "moderation/report-engine",
			"layer", "worker",
			"batch_size", limit,
		)
		return nil
	}

	for _, row := range pending {
		var event ports.EventEnvelope
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			logger.Error("moderation outbox decode failed",
				"event", "moderation_outbox_decode_failed",
				"module", "moderation/report-engine",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		topic := event.EventType
		if topic == "" {
			topic = row.EventType
		}
		if err := r.Publisher.Publish(ctx, topic, event); err != nil {
			logger.Error("moderation outbox publish failed",
				"event", "moderation_outbox_publish_failed",
				"module", "moderation/report-engine",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"topic", topic,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxSent(ctx, row.OutboxID, time.Now().UTC()); err != nil {
			logger.Error("moderation outbox ack failed",
				"event", "moderation_outbox_ack_failed",
				"module", "moderation/report-engine",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
	}

	logger.Info("moderation outbox relay cycle completed",
		"event", "moderation_outbox_relay_completed",
		"module", "moderation/report-engine",
		"layer", "worker",
		"published", len(pending),
	)
	return nil
}
