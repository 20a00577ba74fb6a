package ports

import (
	"context"
	"time"

	"tribunal/contexts/moderation/report-engine/domain/entities"
	sharedevents "tribunal/internal/shared/events"
)

// PostRegistry owns post records and their lifecycle status. Status moves only
// through the report engine.
type PostRegistry interface {
	// InsertPost allocates the next sequential post id and stores the record.
	InsertPost(ctx context.Context, post entities.Post) (entities.PostID, error)
	GetPost(ctx context.Context, postID entities.PostID) (entities.Post, error)
	SetPostStatus(ctx context.Context, postID entities.PostID, status entities.PostStatus) error
	// IncrementReportCount is saturating; the count is never decremented.
	IncrementReportCount(ctx context.Context, postID entities.PostID) error
}

// ReportRepository owns report records and their tallies.
type ReportRepository interface {
	InsertReport(ctx context.Context, report entities.Report) (entities.ReportID, error)
	GetReport(ctx context.Context, reportID entities.ReportID) (entities.Report, error)
	AddVoteTally(ctx context.Context, reportID entities.ReportID, approve bool) error
	MarkResolved(ctx context.Context, reportID entities.ReportID) error
}

// VoteLedger enforces the (report, voter) uniqueness rule. Resolution does not
// consume the enumeration today; it exists for diagnostics and settlement work
// that may land later.
type VoteLedger interface {
	// InsertVote fails with ErrDuplicateVote when the (report, voter) key exists.
	InsertVote(ctx context.Context, vote entities.Vote) error
	VoteExists(ctx context.Context, reportID entities.ReportID, voter entities.Principal) (bool, error)
	GetVote(ctx context.Context, reportID entities.ReportID, voter entities.Principal) (entities.Vote, error)
	ListVotesByReport(ctx context.Context, reportID entities.ReportID) ([]entities.Vote, error)
}

// ReputationStore maps principals to scores and moderator flags. A missing
// record reads as entities.NewReputationRecord.
type ReputationStore interface {
	GetReputation(ctx context.Context, principal entities.Principal) (entities.ReputationRecord, error)
	PutReputation(ctx context.Context, record entities.ReputationRecord) error
}

// StakeCounter tracks the diagnostic running total of escrowed stake.
type StakeCounter interface {
	AddTotalStaked(ctx context.Context, amount entities.Amount) error
	SubTotalStaked(ctx context.Context, amount entities.Amount) error
	TotalStaked(ctx context.Context) (entities.Amount, error)
}

// Ledger is the external fungible-transfer capability. Transfer fails with
// ErrInsufficientFunds when the source balance cannot cover the amount.
type Ledger interface {
	Transfer(ctx context.Context, from entities.Principal, to entities.Principal, amount entities.Amount) error
}

// Clock exposes the external monotonic block counter.
type Clock interface {
	Now() entities.Height
}

// IDGenerator abstracts event/outbox identifier generation.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// IdempotencyRecord pins a client retry key to the request shape that first
// used it and the report it produced.
type IdempotencyRecord struct {
	Key         string
	RequestHash string
	ReportID    entities.ReportID
	ExpiresAt   time.Time
}

// IdempotencyStore makes value-moving commands replay-safe: Get returns the
// stored record while it is unexpired; Put fails with ErrIdempotencyConflict
// when the key is already bound to a different request hash.
type IdempotencyStore interface {
	Get(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	Put(ctx context.Context, record IdempotencyRecord) error
}

// TxRunner executes fn atomically against the persisted state surface: every
// write made through the stores inside fn commits together or not at all.
type TxRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventEnvelope reuses the canonical cross-module envelope contract.
type EventEnvelope = sharedevents.Envelope

// OutboxWriter persists an event alongside the state change that produced it.
type OutboxWriter interface {
	AppendOutbox(ctx context.Context, event EventEnvelope) error
}

// OutboxMessage is a row ready to relay from the module outbox.
type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

// OutboxRepository models worker-side outbox polling/acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error
}

// EventPublisher publishes canonical envelopes to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

// EventSubscriber registers a topic consumer callback.
type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}
