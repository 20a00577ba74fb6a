package queries

import (
	"context"

	"tribunal/contexts/moderation/report-engine/domain/entities"
	"tribunal/contexts/moderation/report-engine/ports"
)

// StatusUseCase serves the read side of the engine. Reads rely on the store's
// own locking; they never take the command mutex.
type StatusUseCase struct {
	Posts      ports.PostRegistry
	Reports    ports.ReportRepository
	Votes      ports.VoteLedger
	Reputation ports.ReputationStore
	Stakes     ports.StakeCounter
}

func (uc StatusUseCase) GetPost(ctx context.Context, postID entities.PostID) (entities.Post, error) {
	return uc.Posts.GetPost(ctx, postID)
}

func (uc StatusUseCase) GetReport(ctx context.Context, reportID entities.ReportID) (entities.Report, error) {
	return uc.Reports.GetReport(ctx, reportID)
}

// ListReportVotes enumerates the per-voter records of a report. Resolution
// never consumes this; it exists for audits of the escrowed voter stakes.
func (uc StatusUseCase) ListReportVotes(ctx context.Context, reportID entities.ReportID) ([]entities.Vote, error) {
	if _, err := uc.Reports.GetReport(ctx, reportID); err != nil {
		return nil, err
	}
	return uc.Votes.ListVotesByReport(ctx, reportID)
}

func (uc StatusUseCase) GetReputation(ctx context.Context, principal entities.Principal) (entities.ReputationRecord, error) {
	return uc.Reputation.GetReputation(ctx, principal)
}

// EngineStats is the diagnostic aggregate surface.
type EngineStats struct {
	TotalStaked entities.Amount
}

func (uc StatusUseCase) Stats(ctx context.Context) (EngineStats, error) {
	total, err := uc.Stakes.TotalStaked(ctx)
	if err != nil {
		return EngineStats{}, err
	}
	return EngineStats{TotalStaked: total}, nil
}
