package postgresadapter

import (
	"time"

	"tribunal/contexts/moderation/report-engine/domain/entities"
)

type postModel struct {
	ID          uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Author      string `gorm:"column:author;size:128;not null;index"`
	ContentRef  []byte `gorm:"column:content_ref;type:bytea;not null"`
	CreatedAtHt uint64 `gorm:"column:created_at_height;not null"`
	Status      string `gorm:"column:status;size:16;not null"`
	ReportCount uint64 `gorm:"column:report_count;not null;default:0"`
}

func (postModel) TableName() string { return "moderation_posts" }

func (m postModel) toEntity() entities.Post {
	return entities.Post{
		PostID:      entities.PostID(m.ID),
		Author:      entities.Principal(m.Author),
		ContentRef:  m.ContentRef,
		CreatedAt:   entities.Height(m.CreatedAtHt),
		Status:      entities.PostStatus(m.Status),
		ReportCount: m.ReportCount,
	}
}

func postModelFromEntity(post entities.Post) postModel {
	return postModel{
		ID:          uint64(post.PostID),
		Author:      string(post.Author),
		ContentRef:  post.ContentRef,
		CreatedAtHt: uint64(post.CreatedAt),
		Status:      string(post.Status),
		ReportCount: post.ReportCount,
	}
}

type reportModel struct {
	ID           uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	PostID       uint64 `gorm:"column:post_id;not null;index"`
	Reporter     string `gorm:"column:reporter;size:128;not null;index"`
	Reason       string `gorm:"column:reason;size:100"`
	Stake        uint64 `gorm:"column:stake;not null"`
	FiledAtHt    uint64 `gorm:"column:filed_at_height;not null"`
	VotesFor     uint64 `gorm:"column:votes_for;not null;default:0"`
	VotesAgainst uint64 `gorm:"column:votes_against;not null;default:0"`
	Resolved     bool   `gorm:"column:resolved;not null;default:false"`
}

func (reportModel) TableName() string { return "moderation_reports" }

func (m reportModel) toEntity() entities.Report {
	return entities.Report{
		ReportID:     entities.ReportID(m.ID),
		PostID:       entities.PostID(m.PostID),
		Reporter:     entities.Principal(m.Reporter),
		Reason:       m.Reason,
		Stake:        entities.Amount(m.Stake),
		FiledAt:      entities.Height(m.FiledAtHt),
		VotesFor:     m.VotesFor,
		VotesAgainst: m.VotesAgainst,
		Resolved:     m.Resolved,
	}
}

func reportModelFromEntity(report entities.Report) reportModel {
	return reportModel{
		ID:           uint64(report.ReportID),
		PostID:       uint64(report.PostID),
		Reporter:     string(report.Reporter),
		Reason:       report.Reason,
		Stake:        uint64(report.Stake),
		FiledAtHt:    uint64(report.FiledAt),
		VotesFor:     report.VotesFor,
		VotesAgainst: report.VotesAgainst,
		Resolved:     report.Resolved,
	}
}

type voteModel struct {
	ReportID uint64 `gorm:"column:report_id;not null;uniqueIndex:idx_vote_report_voter"`
	Voter    string `gorm:"column:voter;size:128;not null;uniqueIndex:idx_vote_report_voter"`
	Approve  bool   `gorm:"column:approve;not null"`
	Stake    uint64 `gorm:"column:stake;not null"`
	CastAtHt uint64 `gorm:"column:cast_at_height;not null"`
}

func (voteModel) TableName() string { return "moderation_votes" }

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		ReportID: entities.ReportID(m.ReportID),
		Voter:    entities.Principal(m.Voter),
		Approve:  m.Approve,
		Stake:    entities.Amount(m.Stake),
		CastAt:   entities.Height(m.CastAtHt),
	}
}

type reputationModel struct {
	Principal   string `gorm:"column:principal;primaryKey;size:128"`
	Score       uint64 `gorm:"column:score;not null"`
	IsModerator bool   `gorm:"column:is_moderator;not null;default:false"`
}

func (reputationModel) TableName() string { return "moderation_reputation" }

func (m reputationModel) toEntity() entities.ReputationRecord {
	return entities.ReputationRecord{
		Principal:   entities.Principal(m.Principal),
		Score:       m.Score,
		IsModerator: m.IsModerator,
	}
}

type stakeTotalModel struct {
	ID          int    `gorm:"column:id;primaryKey"`
	TotalStaked uint64 `gorm:"column:total_staked;not null;default:0"`
}

func (stakeTotalModel) TableName() string { return "moderation_stake_totals" }

type outboxModel struct {
	OutboxID     string     `gorm:"column:id;primaryKey;size:64"`
	EventType    string     `gorm:"column:event_type;size:128;not null;index"`
	PartitionKey string     `gorm:"column:partition_key;size:128"`
	Payload      []byte     `gorm:"column:payload;type:jsonb;not null"`
	Status       string     `gorm:"column:status;size:16;not null;index"`
	CreatedAt    time.Time  `gorm:"column:created_at;not null"`
	SentAt       *time.Time `gorm:"column:sent_at"`
}

func (outboxModel) TableName() string { return "moderation_outbox" }

type idempotencyModel struct {
	Key         string    `gorm:"column:key;primaryKey;size:128"`
	RequestHash string    `gorm:"column:request_hash;size:64;not null"`
	ReportID    uint64    `gorm:"column:report_id;not null"`
	ExpiresAt   time.Time `gorm:"column:expires_at;not null"`
}

func (idempotencyModel) TableName() string { return "moderation_idempotency" }
