package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	application "tribunal/contexts/moderation/report-engine/application"
	"tribunal/contexts/moderation/report-engine/ports"
)

// EngineUseCase is the report-engine state machine. Every command validates
// eagerly and then performs its ledger transfer, state writes and outbox
// append inside one store transaction, so a failed operation leaves zero
// observable change.
//
// The mutex serializes commands because invariants span the post registry,
// vote ledger, reputation store and stake counter; a partially updated view
// must never be observable. Reads go through queries without the lock.
type EngineUseCase struct {
	mu sync.Mutex

	Posts       ports.PostRegistry
	Reports     ports.ReportRepository
	Votes       ports.VoteLedger
	Reputation  ports.ReputationStore
	Stakes      ports.StakeCounter
	Ledger      ports.Ledger
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Outbox      ports.OutboxWriter
	Idempotency ports.IdempotencyStore
	Tx          ports.TxRunner

	IdempotencyTTL time.Duration

	Logger *slog.Logger
}

func (uc *EngineUseCase) logger() *slog.Logger {
	return application.ResolveLogger(uc.Logger)
}

// atomically runs fn inside the store transaction boundary so the escrow
// transfer, state writes and outbox append of one command commit together.
func (uc *EngineUseCase) atomically(ctx context.Context, fn func(ctx context.Context) error) error {
	if uc.Tx == nil {
		return fn(ctx)
	}
	return uc.Tx.RunInTransaction(ctx, fn)
}

func (uc *EngineUseCase) resolveIdempotencyTTL() time.Duration {
	if uc.IdempotencyTTL > 0 {
		return uc.IdempotencyTTL
	}
	return 7 * 24 * time.Hour
}

// appendEvent writes an envelope to the module outbox. A nil outbox is a
// no-op so pure read/test wiring stays light.
func (uc *EngineUseCase) appendEvent(
	ctx context.Context,
	eventType string,
	partitionKey string,
	data map[string]any,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:       eventID,
		EventType:     eventType,
		OccurredAt:    time.Now().UTC(),
		SourceService: "tribunal",
		SchemaVersion: 1,
		PartitionKey:  partitionKey,
		Data:          raw,
	})
}
