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

// CastVoteCommand records a moderator's choice on an open report, bonding the
// voter's stake in escrow.
type CastVoteCommand struct {
	Voter          entities.Principal
	ReportID       entities.ReportID
	Approve        bool
	Stake          entities.Amount
	IdempotencyKey string
}

// CastVoteResult carries the vote plus whether the call replayed an earlier
// request with the same idempotency key.
type CastVoteResult struct {
	Vote     entities.Vote
	Replayed bool
}

// CastVote validates moderator status, the voting window and vote exclusivity
// before escrowing the stake and recording the vote. The method is
// replay-safe via idempotency key + request hash validation; the escrow
// transfer and state writes commit in one store transaction. A resolved
// report is treated identically to a closed window.
func (uc *EngineUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := uc.logger()
	voter := entities.Principal(strings.TrimSpace(string(cmd.Voter)))
	if voter == "" {
		return CastVoteResult{}, domainerrors.ErrInvalidRequest
	}
	if strings.TrimSpace(cmd.IdempotencyKey) == "" {
		logger.Warn("cast vote idempotency key missing",
			"event", "moderation_cast_vote_idempotency_missing",
			"module", "moderation/report-engine",
			"layer", "application",
			"voter", string(voter),
			"report_id", uint64(cmd.ReportID),
		)
		return CastVoteResult{}, domainerrors.ErrIdempotencyKeyRequired
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	wallNow := time.Now().UTC()
	requestHash := hashCastVoteCommand(cmd)
	if record, found, err := uc.Idempotency.Get(ctx, strings.TrimSpace(cmd.IdempotencyKey), wallNow); err != nil {
		return CastVoteResult{}, err
	} else if found {
		if record.RequestHash != requestHash {
			logger.Warn("cast vote idempotency conflict",
				"event", "moderation_cast_vote_idempotency_conflict",
				"module", "moderation/report-engine",
				"layer", "application",
				"voter", string(voter),
				"report_id", uint64(cmd.ReportID),
			)
			return CastVoteResult{}, domainerrors.ErrIdempotencyConflict
		}
		vote, err := uc.Votes.GetVote(ctx, record.ReportID, voter)
		if err != nil {
			return CastVoteResult{}, err
		}
		logger.Info("cast vote replayed",
			"event", "moderation_cast_vote_replayed",
			"module", "moderation/report-engine",
			"layer", "application",
			"report_id", uint64(vote.ReportID),
			"voter", string(voter),
		)
		return CastVoteResult{Vote: vote, Replayed: true}, nil
	}

	record, err := uc.Reputation.GetReputation(ctx, voter)
	if err != nil {
		return CastVoteResult{}, err
	}
	if !record.IsModerator {
		logger.Warn("vote rejected: caller is not a moderator",
			"event", "moderation_cast_vote_not_moderator",
			"module", "moderation/report-engine",
			"layer", "application",
			"voter", string(voter),
			"report_id", uint64(cmd.ReportID),
		)
		return CastVoteResult{}, domainerrors.ErrNotModerator
	}

	report, err := uc.Reports.GetReport(ctx, cmd.ReportID)
	if err != nil {
		return CastVoteResult{}, err
	}
	now := uc.Clock.Now()
	if !report.VotingOpen(now) {
		return CastVoteResult{}, domainerrors.ErrVotingPeriodEnded
	}
	if cmd.Stake < entities.MinStakeAmount {
		return CastVoteResult{}, domainerrors.ErrInsufficientStake
	}
	exists, err := uc.Votes.VoteExists(ctx, cmd.ReportID, voter)
	if err != nil {
		return CastVoteResult{}, err
	}
	if exists {
		return CastVoteResult{}, domainerrors.ErrDuplicateVote
	}

	vote := entities.Vote{
		ReportID: cmd.ReportID,
		Voter:    voter,
		Approve:  cmd.Approve,
		Stake:    cmd.Stake,
		CastAt:   now,
	}
	err = uc.atomically(ctx, func(ctx context.Context) error {
		if err := uc.Ledger.Transfer(ctx, voter, entities.EscrowAccount, cmd.Stake); err != nil {
			logger.Warn("vote stake escrow rejected",
				"event", "moderation_cast_vote_escrow_rejected",
				"module", "moderation/report-engine",
				"layer", "application",
				"voter", string(voter),
				"report_id", uint64(cmd.ReportID),
				"stake", uint64(cmd.Stake),
				"error", err.Error(),
			)
			return domainerrors.ErrTransferFailed
		}
		if err := uc.Votes.InsertVote(ctx, vote); err != nil {
			return err
		}
		if err := uc.Reports.AddVoteTally(ctx, cmd.ReportID, cmd.Approve); err != nil {
			return err
		}
		if err := uc.Stakes.AddTotalStaked(ctx, cmd.Stake); err != nil {
			return err
		}
		if err := uc.appendEvent(ctx, "moderation.vote.cast", strconv.FormatUint(uint64(cmd.ReportID), 10), map[string]any{
			"report_id": uint64(cmd.ReportID),
			"voter":     string(voter),
			"approve":   cmd.Approve,
			"stake":     uint64(cmd.Stake),
			"cast_at":   uint64(now),
		}); err != nil {
			return err
		}
		return uc.Idempotency.Put(ctx, ports.IdempotencyRecord{
			Key:         strings.TrimSpace(cmd.IdempotencyKey),
			RequestHash: requestHash,
			ReportID:    cmd.ReportID,
			ExpiresAt:   wallNow.Add(uc.resolveIdempotencyTTL()),
		})
	})
	if err != nil {
		return CastVoteResult{}, err
	}

	logger.Info("vote cast",
		"event", "moderation_vote_cast",
		"module", "moderation/report-engine",
		"layer", "application",
		"report_id", uint64(cmd.ReportID),
		"voter", string(voter),
		"approve", cmd.Approve,
		"stake", uint64(cmd.Stake),
		"height", uint64(now),
	)
	return CastVoteResult{Vote: vote}, nil
}

func hashCastVoteCommand(cmd CastVoteCommand) string {
	payload := map[string]string{
		"voter":     strings.TrimSpace(string(cmd.Voter)),
		"report_id": strconv.FormatUint(uint64(cmd.ReportID), 10),
		"approve":   strconv.FormatBool(cmd.Approve),
		"stake":     strconv.FormatUint(uint64(cmd.Stake), 10),
		"op":        "cast_vote",
	}
	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
