package commands

import (
	"context"
	"strconv"

	"tribunal/contexts/moderation/report-engine/domain/entities"
	domainerrors "tribunal/contexts/moderation/report-engine/domain/errors"
)

// ResolveReportCommand settles a report whose voting window has elapsed.
type ResolveReportCommand struct {
	ReportID entities.ReportID
}

// ResolveReport applies the strict-majority rule exactly once per report.
// The payout transfer and state writes commit in one store transaction; a
// ledger rejection leaves the report unresolved and untouched.
//
// Voter stakes stay escrowed after resolution. The source rule never
// distributed them and no distribution formula is invented here; only the
// reporter's stake moves.
func (uc *EngineUseCase) ResolveReport(ctx context.Context, cmd ResolveReportCommand) (entities.ResolutionOutcome, error) {
	logger := uc.logger()

	uc.mu.Lock()
	defer uc.mu.Unlock()

	report, err := uc.Reports.GetReport(ctx, cmd.ReportID)
	if err != nil {
		return entities.ResolutionOutcome{}, err
	}
	if report.Resolved {
		return entities.ResolutionOutcome{}, domainerrors.ErrVotingPeriodEnded
	}
	now := uc.Clock.Now()
	if now < report.VotingEndsAt() {
		return entities.ResolutionOutcome{}, domainerrors.ErrVotingPeriodEnded
	}
	if report.TotalVotes() == 0 {
		return entities.ResolutionOutcome{}, domainerrors.ErrInvalidVote
	}

	post, err := uc.Posts.GetPost(ctx, report.PostID)
	if err != nil {
		return entities.ResolutionOutcome{}, err
	}

	upheld := report.Upheld()
	err = uc.atomically(ctx, func(ctx context.Context) error {
		var transferErr error
		if upheld {
			transferErr = uc.Ledger.Transfer(ctx, entities.EscrowAccount, report.Reporter, report.Stake+entities.UpholdBonus)
		} else {
			transferErr = uc.Ledger.Transfer(ctx, entities.EscrowAccount, post.Author, report.Stake)
		}
		if transferErr != nil {
			logger.Error("resolution payout rejected",
				"event", "moderation_resolve_payout_rejected",
				"module", "moderation/report-engine",
				"layer", "application",
				"report_id", uint64(cmd.ReportID),
				"upheld", upheld,
				"error", transferErr.Error(),
			)
			return domainerrors.ErrTransferFailed
		}

		if err := uc.Reports.MarkResolved(ctx, cmd.ReportID); err != nil {
			return err
		}

		status := entities.PostStatusActive
		winner, loser := post.Author, report.Reporter
		if upheld {
			status = entities.PostStatusRemoved
			winner, loser = report.Reporter, post.Author
		}
		if err := uc.Posts.SetPostStatus(ctx, report.PostID, status); err != nil {
			return err
		}
		if err := uc.applyReputationDelta(ctx, winner, int64(entities.ReputationReward)); err != nil {
			return err
		}
		if err := uc.applyReputationDelta(ctx, loser, -int64(entities.ReputationPenalty)); err != nil {
			return err
		}
		if err := uc.Stakes.SubTotalStaked(ctx, report.Stake); err != nil {
			return err
		}
		return uc.appendEvent(ctx, "moderation.report.resolved", strconv.FormatUint(uint64(cmd.ReportID), 10), map[string]any{
			"report_id":     uint64(cmd.ReportID),
			"post_id":       uint64(report.PostID),
			"upheld":        upheld,
			"votes_for":     report.VotesFor,
			"votes_against": report.VotesAgainst,
			"resolved_at":   uint64(now),
		})
	})
	if err != nil {
		return entities.ResolutionOutcome{}, err
	}

	outcome := entities.ResolutionOutcome{
		ReportID:     cmd.ReportID,
		Upheld:       upheld,
		VotesFor:     report.VotesFor,
		VotesAgainst: report.VotesAgainst,
		TotalVotes:   report.TotalVotes(),
	}

	logger.Info("report resolved",
		"event", "moderation_report_resolved",
		"module", "moderation/report-engine",
		"layer", "application",
		"report_id", uint64(cmd.ReportID),
		"post_id", uint64(report.PostID),
		"upheld", upheld,
		"votes_for", report.VotesFor,
		"votes_against", report.VotesAgainst,
		"height", uint64(now),
	)
	return outcome, nil
}

// applyReputationDelta routes every score change through the single
// saturating-update rule.
func (uc *EngineUseCase) applyReputationDelta(ctx context.Context, principal entities.Principal, delta int64) error {
	record, err := uc.Reputation.GetReputation(ctx, principal)
	if err != nil {
		return err
	}
	record.ApplyDelta(delta)
	return uc.Reputation.PutReputation(ctx, record)
}
