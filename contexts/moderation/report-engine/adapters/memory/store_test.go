package memory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"tribunal/contexts/moderation/report-engine/domain/entities"
	domainerrors "tribunal/contexts/moderation/report-engine/domain/errors"
	"tribunal/contexts/moderation/report-engine/ports"
)

func TestStoreAssignsSequentialIdentifiers(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	firstPost, err := store.InsertPost(ctx, entities.Post{Author: "author-1"})
	if err != nil {
		t.Fatalf("insert post failed: %v", err)
	}
	secondPost, err := store.InsertPost(ctx, entities.Post{Author: "author-2"})
	if err != nil {
		t.Fatalf("insert post failed: %v", err)
	}
	if firstPost != 1 || secondPost != 2 {
		t.Fatalf("expected post ids 1 and 2, got %d and %d", firstPost, secondPost)
	}

	firstReport, err := store.InsertReport(ctx, entities.Report{PostID: firstPost, Reporter: "reporter-1"})
	if err != nil {
		t.Fatalf("insert report failed: %v", err)
	}
	if firstReport != 1 {
		t.Fatalf("expected report id 1, got %d", firstReport)
	}
}

func TestStoreVoteUniqueness(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	vote := entities.Vote{ReportID: 1, Voter: "mod-1", Approve: true, Stake: 5}

	if err := store.InsertVote(ctx, vote); err != nil {
		t.Fatalf("insert vote failed: %v", err)
	}
	if err := store.InsertVote(ctx, vote); !errors.Is(err, domainerrors.ErrDuplicateVote) {
		t.Fatalf("expected duplicate vote, got %v", err)
	}

	exists, err := store.VoteExists(ctx, 1, "mod-1")
	if err != nil || !exists {
		t.Fatalf("expected vote to exist, got exists=%v err=%v", exists, err)
	}
	exists, err = store.VoteExists(ctx, 1, "mod-2")
	if err != nil || exists {
		t.Fatalf("expected no vote for other moderator, got exists=%v err=%v", exists, err)
	}
}

func TestStoreListVotesOrdering(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	votes := []entities.Vote{
		{ReportID: 1, Voter: "mod-b", CastAt: 20},
		{ReportID: 1, Voter: "mod-a", CastAt: 10},
		{ReportID: 1, Voter: "mod-c", CastAt: 10},
		{ReportID: 2, Voter: "mod-a", CastAt: 5},
	}
	for _, vote := range votes {
		if err := store.InsertVote(ctx, vote); err != nil {
			t.Fatalf("insert vote failed: %v", err)
		}
	}

	listed, err := store.ListVotesByReport(ctx, 1)
	if err != nil {
		t.Fatalf("list votes failed: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 votes for report 1, got %d", len(listed))
	}
	want := []entities.Principal{"mod-a", "mod-c", "mod-b"}
	for i, voter := range want {
		if listed[i].Voter != voter {
			t.Fatalf("position %d: expected %s, got %s", i, voter, listed[i].Voter)
		}
	}
}

func TestStoreReputationDefaults(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	record, err := store.GetReputation(ctx, "stranger")
	if err != nil {
		t.Fatalf("get reputation failed: %v", err)
	}
	if record.Score != entities.DefaultReputation || record.IsModerator {
		t.Fatalf("expected implicit default record, got %+v", record)
	}
}

func TestStoreStakeCounterFloorsAtZero(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if err := store.AddTotalStaked(ctx, 100); err != nil {
		t.Fatalf("add total staked failed: %v", err)
	}
	if err := store.SubTotalStaked(ctx, 250); err != nil {
		t.Fatalf("sub total staked failed: %v", err)
	}
	total, err := store.TotalStaked(ctx)
	if err != nil {
		t.Fatalf("total staked failed: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected floor at zero, got %d", total)
	}
}

func TestStoreOutboxLifecycle(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	data, _ := json.Marshal(map[string]any{"report_id": 1})
	event := ports.EventEnvelope{
		EventID:       "evt-1",
		EventType:     "moderation.report.filed",
		OccurredAt:    time.Now().UTC(),
		SourceService: "tribunal",
		SchemaVersion: 1,
		PartitionKey:  "1",
		Data:          data,
	}
	if err := store.AppendOutbox(ctx, event); err != nil {
		t.Fatalf("append outbox failed: %v", err)
	}

	pending, err := store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending row, got %d", len(pending))
	}
	if pending[0].EventType != "moderation.report.filed" {
		t.Fatalf("unexpected event type %s", pending[0].EventType)
	}

	if err := store.MarkOutboxSent(ctx, pending[0].OutboxID, time.Now().UTC()); err != nil {
		t.Fatalf("mark sent failed: %v", err)
	}
	pending, err = store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected empty outbox after ack, got %d rows", len(pending))
	}
}

func TestStoreIdempotencyRecords(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	now := time.Now().UTC()

	record := ports.IdempotencyRecord{
		Key:         "key-1",
		RequestHash: "hash-1",
		ReportID:    7,
		ExpiresAt:   now.Add(time.Hour),
	}
	if err := store.Put(ctx, record); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, found, err := store.Get(ctx, "key-1", now)
	if err != nil || !found {
		t.Fatalf("expected stored record, found=%v err=%v", found, err)
	}
	if got.RequestHash != "hash-1" || got.ReportID != 7 {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Same key with the same payload is a no-op, a different payload is a
	// conflict.
	if err := store.Put(ctx, record); err != nil {
		t.Fatalf("idempotent put failed: %v", err)
	}
	record.RequestHash = "hash-2"
	if err := store.Put(ctx, record); !errors.Is(err, domainerrors.ErrIdempotencyConflict) {
		t.Fatalf("expected conflict for changed hash, got %v", err)
	}

	// Expired records vanish on read.
	_, found, err = store.Get(ctx, "key-1", now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if found {
		t.Fatalf("expected expired record dropped")
	}
}
