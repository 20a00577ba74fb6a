package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"tribunal/contexts/moderation/report-engine/domain/entities"
	domainerrors "tribunal/contexts/moderation/report-engine/domain/errors"
	"tribunal/contexts/moderation/report-engine/ports"

	"github.com/google/uuid"
)

type voteKey struct {
	reportID entities.ReportID
	voter    entities.Principal
}

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store keeps the whole persisted surface of the engine — the four keyed
// collections plus the three scalar counters — behind one lock, so the
// cross-entity invariants hold for every reader.
type Store struct {
	mu sync.RWMutex

	posts       map[entities.PostID]entities.Post
	reports     map[entities.ReportID]entities.Report
	votes       map[voteKey]entities.Vote
	reputation  map[entities.Principal]entities.ReputationRecord
	outbox      map[string]outboxRecord
	idempotency map[string]ports.IdempotencyRecord

	nextPostID   uint64
	nextReportID uint64
	totalStaked  entities.Amount
}

func NewStore() *Store {
	return &Store{
		posts:       make(map[entities.PostID]entities.Post),
		reports:     make(map[entities.ReportID]entities.Report),
		votes:       make(map[voteKey]entities.Vote),
		reputation:  make(map[entities.Principal]entities.ReputationRecord),
		outbox:      make(map[string]outboxRecord),
		idempotency: make(map[string]ports.IdempotencyRecord),
	}
}

// SetReputation seeds a reputation record for tests and local wiring.
func (s *Store) SetReputation(record entities.ReputationRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reputation[record.Principal] = record
}

func (s *Store) InsertPost(_ context.Context, post entities.Post) (entities.PostID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPostID++
	post.PostID = entities.PostID(s.nextPostID)
	s.posts[post.PostID] = post
	return post.PostID, nil
}

func (s *Store) GetPost(_ context.Context, postID entities.PostID) (entities.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	post, ok := s.posts[postID]
	if !ok {
		return entities.Post{}, domainerrors.ErrPostNotFound
	}
	return post, nil
}

func (s *Store) SetPostStatus(_ context.Context, postID entities.PostID, status entities.PostStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[postID]
	if !ok {
		return domainerrors.ErrPostNotFound
	}
	post.Status = status
	s.posts[postID] = post
	return nil
}

func (s *Store) IncrementReportCount(_ context.Context, postID entities.PostID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[postID]
	if !ok {
		return domainerrors.ErrPostNotFound
	}
	if post.ReportCount+1 != 0 {
		post.ReportCount++
	}
	s.posts[postID] = post
	return nil
}

func (s *Store) InsertReport(_ context.Context, report entities.Report) (entities.ReportID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextReportID++
	report.ReportID = entities.ReportID(s.nextReportID)
	s.reports[report.ReportID] = report
	return report.ReportID, nil
}

func (s *Store) GetReport(_ context.Context, reportID entities.ReportID) (entities.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[reportID]
	if !ok {
		return entities.Report{}, domainerrors.ErrReportNotFound
	}
	return report, nil
}

func (s *Store) AddVoteTally(_ context.Context, reportID entities.ReportID, approve bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, ok := s.reports[reportID]
	if !ok {
		return domainerrors.ErrReportNotFound
	}
	if approve {
		report.VotesFor++
	} else {
		report.VotesAgainst++
	}
	s.reports[reportID] = report
	return nil
}

func (s *Store) MarkResolved(_ context.Context, reportID entities.ReportID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, ok := s.reports[reportID]
	if !ok {
		return domainerrors.ErrReportNotFound
	}
	report.Resolved = true
	s.reports[reportID] = report
	return nil
}

func (s *Store) InsertVote(_ context.Context, vote entities.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := voteKey{reportID: vote.ReportID, voter: vote.Voter}
	if _, exists := s.votes[key]; exists {
		return domainerrors.ErrDuplicateVote
	}
	s.votes[key] = vote
	return nil
}

func (s *Store) GetVote(_ context.Context, reportID entities.ReportID, voter entities.Principal) (entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vote, ok := s.votes[voteKey{reportID: reportID, voter: voter}]
	if !ok {
		return entities.Vote{}, domainerrors.ErrReportNotFound
	}
	return vote, nil
}

func (s *Store) VoteExists(_ context.Context, reportID entities.ReportID, voter entities.Principal) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.votes[voteKey{reportID: reportID, voter: voter}]
	return exists, nil
}

func (s *Store) ListVotesByReport(_ context.Context, reportID entities.ReportID) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Vote, 0)
	for key, vote := range s.votes {
		if key.reportID == reportID {
			items = append(items, vote)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CastAt == items[j].CastAt {
			return items[i].Voter < items[j].Voter
		}
		return items[i].CastAt < items[j].CastAt
	})
	return items, nil
}

func (s *Store) GetReputation(_ context.Context, principal entities.Principal) (entities.ReputationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.reputation[principal]
	if !ok {
		return entities.NewReputationRecord(principal), nil
	}
	return record, nil
}

func (s *Store) PutReputation(_ context.Context, record entities.ReputationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reputation[record.Principal] = record
	return nil
}

func (s *Store) AddTotalStaked(_ context.Context, amount entities.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalStaked += amount
	return nil
}

func (s *Store) SubTotalStaked(_ context.Context, amount entities.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if amount > s.totalStaked {
		s.totalStaked = 0
		return nil
	}
	s.totalStaked -= amount
	return nil
}

func (s *Store) TotalStaked(_ context.Context) (entities.Amount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalStaked, nil
}

func (s *Store) Get(_ context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key = strings.TrimSpace(key)
	record, exists := s.idempotency[key]
	if !exists {
		return ports.IdempotencyRecord{}, false, nil
	}
	if !record.ExpiresAt.After(now.UTC()) {
		delete(s.idempotency, key)
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) Put(_ context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.TrimSpace(record.Key)
	existing, exists := s.idempotency[key]
	if exists {
		if existing.RequestHash != record.RequestHash || existing.ReportID != record.ReportID {
			return domainerrors.ErrIdempotencyConflict
		}
		return nil
	}
	s.idempotency[key] = ports.IdempotencyRecord{
		Key:         key,
		RequestHash: strings.TrimSpace(record.RequestHash),
		ReportID:    record.ReportID,
		ExpiresAt:   record.ExpiresAt.UTC(),
	}
	return nil
}

// RunInTransaction satisfies ports.TxRunner. Map writes cannot half-fail, so
// the in-memory store runs fn directly; atomicity comes from the engine's
// command lock.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// NewID satisfies ports.IDGenerator so the in-memory module needs no extra
// wiring for event identifiers.
func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) AppendOutbox(_ context.Context, event ports.EventEnvelope) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	outboxID := uuid.NewString()
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    event.EventType,
			PartitionKey: event.PartitionKey,
			Payload:      payload,
			CreatedAt:    time.Now().UTC(),
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ports.OutboxMessage, 0)
	for _, record := range s.outbox {
		if record.published {
			continue
		}
		items = append(items, record.message)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxSent(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.outbox[outboxID]
	if !ok {
		return nil
	}
	record.published = true
	s.outbox[outboxID] = record
	return nil
}
