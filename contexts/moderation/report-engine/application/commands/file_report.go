package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"tribunal/contexts/moderation/report-engine/domain/entities"
	domainerrors "tribunal/contexts/moderation/report-engine/domain/errors"
	"tribunal/contexts/moderation/report-engine/ports"
)

// FileReportCommand flags a post, bonding the reporter's stake in escrow until
// resolution. Any principal may report any post; ownership is not checked.
type FileReportCommand struct {
	Reporter       entities.Principal
	PostID         entities.PostID
	Reason         string
	Stake          entities.Amount
	IdempotencyKey string
}

// FileReportResult carries the report plus whether the call replayed an
// earlier request with the same idempotency key.
type FileReportResult struct {
	Report   entities.Report
	Replayed bool
}

// FileReport escrows the stake, allocates the next report id and flags the
// post. The method is replay-safe via idempotency key + request hash
// validation, and the escrow transfer and state writes commit in one store
// transaction so a ledger rejection leaves nothing mutated.
func (uc *EngineUseCase) FileReport(ctx context.Context, cmd FileReportCommand) (FileReportResult, error) {
	logger := uc.logger()
	reporter := entities.Principal(strings.TrimSpace(string(cmd.Reporter)))
	if reporter == "" || len(cmd.Reason) > entities.ReasonMaxBytes {
		logger.Warn("file report validation failed",
			"event", "moderation_file_report_validation_failed",
			"module", "moderation/report-engine",
			"layer", "application",
			"reporter", string(reporter),
			"post_id", uint64(cmd.PostID),
			"reason_bytes", len(cmd.Reason),
		)
		return FileReportResult{}, domainerrors.ErrInvalidRequest
	}
	if strings.TrimSpace(cmd.IdempotencyKey) == "" {
		logger.Warn("file report idempotency key missing",
			"event", "moderation_file_report_idempotency_missing",
			"module", "moderation/report-engine",
			"layer", "application",
			"reporter", string(reporter),
			"post_id", uint64(cmd.PostID),
		)
		return FileReportResult{}, domainerrors.ErrIdempotencyKeyRequired
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	wallNow := time.Now().UTC()
	requestHash := hashFileReportCommand(cmd)
	if record, found, err := uc.Idempotency.Get(ctx, strings.TrimSpace(cmd.IdempotencyKey), wallNow); err != nil {
		return FileReportResult{}, err
	} else if found {
		if record.RequestHash != requestHash {
			logger.Warn("file report idempotency conflict",
				"event", "moderation_file_report_idempotency_conflict",
				"module", "moderation/report-engine",
				"layer", "application",
				"reporter", string(reporter),
				"post_id", uint64(cmd.PostID),
			)
			return FileReportResult{}, domainerrors.ErrIdempotencyConflict
		}
		report, err := uc.Reports.GetReport(ctx, record.ReportID)
		if err != nil {
			return FileReportResult{}, err
		}
		logger.Info("file report replayed",
			"event", "moderation_file_report_replayed",
			"module", "moderation/report-engine",
			"layer", "application",
			"report_id", uint64(report.ReportID),
			"post_id", uint64(report.PostID),
			"reporter", string(reporter),
		)
		return FileReportResult{Report: report, Replayed: true}, nil
	}

	if _, err := uc.Posts.GetPost(ctx, cmd.PostID); err != nil {
		return FileReportResult{}, err
	}
	if cmd.Stake < entities.MinStakeAmount {
		return FileReportResult{}, domainerrors.ErrInsufficientStake
	}

	now := uc.Clock.Now()
	report := entities.Report{
		PostID:   cmd.PostID,
		Reporter: reporter,
		Reason:   cmd.Reason,
		Stake:    cmd.Stake,
		FiledAt:  now,
	}
	err := uc.atomically(ctx, func(ctx context.Context) error {
		if err := uc.Ledger.Transfer(ctx, reporter, entities.EscrowAccount, cmd.Stake); err != nil {
			logger.Warn("report stake escrow rejected",
				"event", "moderation_file_report_escrow_rejected",
				"module", "moderation/report-engine",
				"layer", "application",
				"reporter", string(reporter),
				"post_id", uint64(cmd.PostID),
				"stake", uint64(cmd.Stake),
				"error", err.Error(),
			)
			return domainerrors.ErrTransferFailed
		}
		reportID, err := uc.Reports.InsertReport(ctx, report)
		if err != nil {
			return err
		}
		report.ReportID = reportID
		if err := uc.Posts.IncrementReportCount(ctx, cmd.PostID); err != nil {
			return err
		}
		if err := uc.Posts.SetPostStatus(ctx, cmd.PostID, entities.PostStatusFlagged); err != nil {
			return err
		}
		if err := uc.Stakes.AddTotalStaked(ctx, cmd.Stake); err != nil {
			return err
		}
		if err := uc.appendEvent(ctx, "moderation.report.filed", strconv.FormatUint(uint64(reportID), 10), map[string]any{
			"report_id": uint64(reportID),
			"post_id":   uint64(cmd.PostID),
			"reporter":  string(reporter),
			"stake":     uint64(cmd.Stake),
			"filed_at":  uint64(now),
		}); err != nil {
			return err
		}
		return uc.Idempotency.Put(ctx, ports.IdempotencyRecord{
			Key:         strings.TrimSpace(cmd.IdempotencyKey),
			RequestHash: requestHash,
			ReportID:    reportID,
			ExpiresAt:   wallNow.Add(uc.resolveIdempotencyTTL()),
		})
	})
	if err != nil {
		return FileReportResult{}, err
	}

	logger.Info("report filed",
		"event", "moderation_report_filed",
		"module", "moderation/report-engine",
		"layer", "application",
		"report_id", uint64(report.ReportID),
		"post_id", uint64(cmd.PostID),
		"reporter", string(reporter),
		"stake", uint64(cmd.Stake),
		"voting_ends_at", uint64(report.VotingEndsAt()),
	)
	return FileReportResult{Report: report}, nil
}

func hashFileReportCommand(cmd FileReportCommand) string {
	payload := map[string]string{
		"reporter": strings.TrimSpace(string(cmd.Reporter)),
		"post_id":  strconv.FormatUint(uint64(cmd.PostID), 10),
		"reason":   cmd.Reason,
		"stake":    strconv.FormatUint(uint64(cmd.Stake), 10),
		"op":       "file_report",
	}
	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
