package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"tribunal/contexts/moderation/report-engine/domain/entities"
	domainerrors "tribunal/contexts/moderation/report-engine/domain/errors"
	"tribunal/contexts/moderation/report-engine/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending = "pending"
	outboxStatusSent    = "sent"

	stakeTotalRowID = 1
)

// Repository persists the engine state surface with gorm. It implements every
// storage port of the module; command serialization is the engine's concern.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

type txKey struct{}

// conn resolves the gorm handle for ctx, preferring the open transaction when
// the call runs inside RunInTransaction.
func (r *Repository) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}

// RunInTransaction implements ports.TxRunner. The transaction handle travels
// in the context, so every port call inside fn joins the same database
// transaction and a failure rolls all of them back together.
func (r *Repository) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// AutoMigrate creates the module tables. Invoked from the composition root so
// a fresh database serves immediately.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&postModel{},
		&reportModel{},
		&voteModel{},
		&reputationModel{},
		&stakeTotalModel{},
		&accountModel{},
		&outboxModel{},
		&idempotencyModel{},
	)
}

func (r *Repository) InsertPost(ctx context.Context, post entities.Post) (entities.PostID, error) {
	row := postModelFromEntity(post)
	row.ID = 0
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		return 0, r.logError("moderation_repo_insert_post_failed", err, "author", string(post.Author))
	}
	return entities.PostID(row.ID), nil
}

func (r *Repository) GetPost(ctx context.Context, postID entities.PostID) (entities.Post, error) {
	var row postModel
	err := r.conn(ctx).Where("id = ?", uint64(postID)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Post{}, domainerrors.ErrPostNotFound
		}
		return entities.Post{}, r.logError("moderation_repo_get_post_failed", err, "post_id", uint64(postID))
	}
	return row.toEntity(), nil
}

func (r *Repository) SetPostStatus(ctx context.Context, postID entities.PostID, status entities.PostStatus) error {
	tx := r.conn(ctx).Model(&postModel{}).
		Where("id = ?", uint64(postID)).
		Update("status", string(status))
	if tx.Error != nil {
		return r.logError("moderation_repo_set_post_status_failed", tx.Error, "post_id", uint64(postID))
	}
	if tx.RowsAffected == 0 {
		return domainerrors.ErrPostNotFound
	}
	return nil
}

func (r *Repository) IncrementReportCount(ctx context.Context, postID entities.PostID) error {
	tx := r.conn(ctx).Model(&postModel{}).
		Where("id = ?", uint64(postID)).
		Update("report_count", gorm.Expr("report_count + 1"))
	if tx.Error != nil {
		return r.logError("moderation_repo_increment_report_count_failed", tx.Error, "post_id", uint64(postID))
	}
	if tx.RowsAffected == 0 {
		return domainerrors.ErrPostNotFound
	}
	return nil
}

func (r *Repository) InsertReport(ctx context.Context, report entities.Report) (entities.ReportID, error) {
	row := reportModelFromEntity(report)
	row.ID = 0
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		return 0, r.logError("moderation_repo_insert_report_failed", err,
			"post_id", uint64(report.PostID),
			"reporter", string(report.Reporter),
		)
	}
	return entities.ReportID(row.ID), nil
}

func (r *Repository) GetReport(ctx context.Context, reportID entities.ReportID) (entities.Report, error) {
	var row reportModel
	err := r.conn(ctx).Where("id = ?", uint64(reportID)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Report{}, domainerrors.ErrReportNotFound
		}
		return entities.Report{}, r.logError("moderation_repo_get_report_failed", err, "report_id", uint64(reportID))
	}
	return row.toEntity(), nil
}

func (r *Repository) AddVoteTally(ctx context.Context, reportID entities.ReportID, approve bool) error {
	column := "votes_against"
	if approve {
		column = "votes_for"
	}
	tx := r.conn(ctx).Model(&reportModel{}).
		Where("id = ?", uint64(reportID)).
		Update(column, gorm.Expr(column+" + 1"))
	if tx.Error != nil {
		return r.logError("moderation_repo_add_vote_tally_failed", tx.Error, "report_id", uint64(reportID))
	}
	if tx.RowsAffected == 0 {
		return domainerrors.ErrReportNotFound
	}
	return nil
}

func (r *Repository) MarkResolved(ctx context.Context, reportID entities.ReportID) error {
	tx := r.conn(ctx).Model(&reportModel{}).
		Where("id = ?", uint64(reportID)).
		Update("resolved", true)
	if tx.Error != nil {
		return r.logError("moderation_repo_mark_resolved_failed", tx.Error, "report_id", uint64(reportID))
	}
	if tx.RowsAffected == 0 {
		return domainerrors.ErrReportNotFound
	}
	return nil
}

func (r *Repository) InsertVote(ctx context.Context, vote entities.Vote) error {
	row := voteModel{
		ReportID: uint64(vote.ReportID),
		Voter:    string(vote.Voter),
		Approve:  vote.Approve,
		Stake:    uint64(vote.Stake),
		CastAtHt: uint64(vote.CastAt),
	}
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateVote
		}
		return r.logError("moderation_repo_insert_vote_failed", err,
			"report_id", uint64(vote.ReportID),
			"voter", string(vote.Voter),
		)
	}
	return nil
}

func (r *Repository) GetVote(ctx context.Context, reportID entities.ReportID, voter entities.Principal) (entities.Vote, error) {
	var row voteModel
	err := r.conn(ctx).
		Where("report_id = ?", uint64(reportID)).
		Where("voter = ?", string(voter)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Vote{}, domainerrors.ErrReportNotFound
		}
		return entities.Vote{}, r.logError("moderation_repo_get_vote_failed", err,
			"report_id", uint64(reportID),
			"voter", string(voter),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) VoteExists(ctx context.Context, reportID entities.ReportID, voter entities.Principal) (bool, error) {
	var count int64
	err := r.conn(ctx).Model(&voteModel{}).
		Where("report_id = ?", uint64(reportID)).
		Where("voter = ?", string(voter)).
		Count(&count).Error
	if err != nil {
		return false, r.logError("moderation_repo_vote_exists_failed", err, "report_id", uint64(reportID))
	}
	return count > 0, nil
}

func (r *Repository) ListVotesByReport(ctx context.Context, reportID entities.ReportID) ([]entities.Vote, error) {
	var rows []voteModel
	err := r.conn(ctx).
		Where("report_id = ?", uint64(reportID)).
		Order("cast_at_height ASC, voter ASC").
		Find(&rows).Error
	if err != nil {
		return nil, r.logError("moderation_repo_list_votes_failed", err, "report_id", uint64(reportID))
	}
	votes := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		votes = append(votes, row.toEntity())
	}
	return votes, nil
}

func (r *Repository) GetReputation(ctx context.Context, principal entities.Principal) (entities.ReputationRecord, error) {
	var row reputationModel
	err := r.conn(ctx).Where("principal = ?", string(principal)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.NewReputationRecord(principal), nil
		}
		return entities.ReputationRecord{}, r.logError("moderation_repo_get_reputation_failed", err,
			"principal", string(principal),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) PutReputation(ctx context.Context, record entities.ReputationRecord) error {
	row := reputationModel{
		Principal:   string(record.Principal),
		Score:       record.Score,
		IsModerator: record.IsModerator,
	}
	err := r.conn(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "principal"}},
		DoUpdates: clause.Assignments(map[string]any{
			"score":        row.Score,
			"is_moderator": row.IsModerator,
		}),
	}).Create(&row).Error
	if err != nil {
		return r.logError("moderation_repo_put_reputation_failed", err, "principal", string(record.Principal))
	}
	return nil
}

func (r *Repository) AddTotalStaked(ctx context.Context, amount entities.Amount) error {
	err := r.conn(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"total_staked": gorm.Expr("moderation_stake_totals.total_staked + ?", uint64(amount)),
		}),
	}).Create(&stakeTotalModel{ID: stakeTotalRowID, TotalStaked: uint64(amount)}).Error
	if err != nil {
		return r.logError("moderation_repo_add_total_staked_failed", err, "amount", uint64(amount))
	}
	return nil
}

func (r *Repository) SubTotalStaked(ctx context.Context, amount entities.Amount) error {
	err := r.conn(ctx).Model(&stakeTotalModel{}).
		Where("id = ?", stakeTotalRowID).
		Update("total_staked", gorm.Expr(
			"CASE WHEN total_staked >= ? THEN total_staked - ? ELSE 0 END",
			uint64(amount), uint64(amount),
		)).Error
	if err != nil {
		return r.logError("moderation_repo_sub_total_staked_failed", err, "amount", uint64(amount))
	}
	return nil
}

func (r *Repository) TotalStaked(ctx context.Context) (entities.Amount, error) {
	var row stakeTotalModel
	err := r.conn(ctx).Where("id = ?", stakeTotalRowID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, r.logError("moderation_repo_total_staked_failed", err)
	}
	return entities.Amount(row.TotalStaked), nil
}

func (r *Repository) Get(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := r.conn(ctx).
		Where("key = ?", strings.TrimSpace(key)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, r.logError("moderation_repo_idempotency_get_failed", err,
			"idempotency_key", strings.TrimSpace(key),
		)
	}
	if !row.ExpiresAt.IsZero() && now.UTC().After(row.ExpiresAt.UTC()) {
		if err := r.conn(ctx).
			Where("key = ?", strings.TrimSpace(key)).
			Delete(&idempotencyModel{}).Error; err != nil {
			return ports.IdempotencyRecord{}, false, r.logError("moderation_repo_idempotency_expire_delete_failed", err,
				"idempotency_key", strings.TrimSpace(key),
			)
		}
		return ports.IdempotencyRecord{}, false, nil
	}
	return ports.IdempotencyRecord{
		Key:         row.Key,
		RequestHash: row.RequestHash,
		ReportID:    entities.ReportID(row.ReportID),
		ExpiresAt:   row.ExpiresAt.UTC(),
	}, true, nil
}

func (r *Repository) Put(ctx context.Context, record ports.IdempotencyRecord) error {
	row := idempotencyModel{
		Key:         strings.TrimSpace(record.Key),
		RequestHash: strings.TrimSpace(record.RequestHash),
		ReportID:    uint64(record.ReportID),
		ExpiresAt:   record.ExpiresAt.UTC(),
	}
	create := r.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("moderation_repo_idempotency_put_failed", create.Error, "idempotency_key", row.Key)
	}
	if create.RowsAffected > 0 {
		return nil
	}

	var existing idempotencyModel
	if err := r.conn(ctx).
		Where("key = ?", row.Key).
		First(&existing).Error; err != nil {
		return r.logError("moderation_repo_idempotency_load_existing_failed", err, "idempotency_key", row.Key)
	}
	if existing.RequestHash != row.RequestHash || existing.ReportID != row.ReportID {
		return domainerrors.ErrIdempotencyConflict
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, event ports.EventEnvelope) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     uuid.NewString(),
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    time.Now().UTC(),
	}
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		return r.logError("moderation_repo_append_outbox_failed", err, "event_type", event.EventType)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	err := r.conn(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, r.logError("moderation_repo_list_pending_outbox_failed", err)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      row.Payload,
			CreatedAt:    row.CreatedAt,
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error {
	err := r.conn(ctx).Model(&outboxModel{}).
		Where("id = ?", outboxID).
		Updates(map[string]any{
			"status":  outboxStatusSent,
			"sent_at": sentAt,
		}).Error
	if err != nil {
		return r.logError("moderation_repo_mark_outbox_sent_failed", err, "outbox_id", outboxID)
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "moderation/report-engine",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
