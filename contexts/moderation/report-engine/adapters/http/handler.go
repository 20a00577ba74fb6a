package httpadapter

import (
	"context"
	"encoding/hex"
	"log/slog"

	application "tribunal/contexts/moderation/report-engine/application"
	"tribunal/contexts/moderation/report-engine/application/commands"
	"tribunal/contexts/moderation/report-engine/application/queries"
	"tribunal/contexts/moderation/report-engine/domain/entities"
	domainerrors "tribunal/contexts/moderation/report-engine/domain/errors"
	httptransport "tribunal/contexts/moderation/report-engine/transport/http"
)

type Handler struct {
	Engine *commands.EngineUseCase
	Status queries.StatusUseCase
	Logger *slog.Logger
}

// CreatePostHandler godoc
// @Summary Register a content item
// @Description Allocates the next post id for the caller's content reference.
// @Tags moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-User-Id header string true "Acting principal"
// @Param request body httptransport.CreatePostRequest true "Post payload"
// @Success 200 {object} httptransport.PostResponse
// @Failure 400 {object} httptransport.ErrorEnvelope
// @Router /api/moderation/v1/posts [post]
func (h Handler) CreatePostHandler(
	ctx context.Context,
	principal string,
	req httptransport.CreatePostRequest,
) (httptransport.PostResponse, error) {
	contentRef, err := hex.DecodeString(req.ContentRef)
	if err != nil {
		return httptransport.PostResponse{}, domainerrors.ErrInvalidRequest
	}
	post, err := h.Engine.CreatePost(ctx, commands.CreatePostCommand{
		Author:     entities.Principal(principal),
		ContentRef: contentRef,
	})
	if err != nil {
		return httptransport.PostResponse{}, err
	}
	return mapPost(post), nil
}

// GetPostHandler godoc
// @Summary Get a post record
// @Tags moderation
// @Produce json
// @Param post_id path int true "Post id"
// @Success 200 {object} httptransport.PostResponse
// @Failure 404 {object} httptransport.ErrorEnvelope
// @Router /api/moderation/v1/posts/{post_id} [get]
func (h Handler) GetPostHandler(ctx context.Context, postID uint64) (httptransport.PostResponse, error) {
	post, err := h.Status.GetPost(ctx, entities.PostID(postID))
	if err != nil {
		return httptransport.PostResponse{}, err
	}
	return mapPost(post), nil
}

// FileReportHandler godoc
// @Summary File a report against a post
// @Description Escrows the reporter's stake and flags the post.
// @Tags moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-User-Id header string true "Acting principal"
// @Param Idempotency-Key header string true "Replay protection key"
// @Param request body httptransport.FileReportRequest true "Report payload"
// @Success 200 {object} httptransport.ReportResponse
// @Failure 400 {object} httptransport.ErrorEnvelope
// @Failure 402 {object} httptransport.ErrorEnvelope
// @Failure 404 {object} httptransport.ErrorEnvelope
// @Failure 409 {object} httptransport.ErrorEnvelope
// @Router /api/moderation/v1/reports [post]
func (h Handler) FileReportHandler(
	ctx context.Context,
	principal string,
	idempotencyKey string,
	req httptransport.FileReportRequest,
) (httptransport.ReportResponse, error) {
	result, err := h.Engine.FileReport(ctx, commands.FileReportCommand{
		Reporter:       entities.Principal(principal),
		PostID:         entities.PostID(req.PostID),
		Reason:         req.Reason,
		Stake:          entities.Amount(req.Stake),
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return httptransport.ReportResponse{}, err
	}
	resp := mapReport(result.Report)
	resp.Replayed = result.Replayed
	return resp, nil
}

// GetReportHandler godoc
// @Summary Get a report record
// @Tags moderation
// @Produce json
// @Param report_id path int true "Report id"
// @Success 200 {object} httptransport.ReportResponse
// @Failure 404 {object} httptransport.ErrorEnvelope
// @Router /api/moderation/v1/reports/{report_id} [get]
func (h Handler) GetReportHandler(ctx context.Context, reportID uint64) (httptransport.ReportResponse, error) {
	report, err := h.Status.GetReport(ctx, entities.ReportID(reportID))
	if err != nil {
		return httptransport.ReportResponse{}, err
	}
	return mapReport(report), nil
}

// CastVoteHandler godoc
// @Summary Cast a moderator vote on a report
// @Tags moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-User-Id header string true "Acting principal"
// @Param Idempotency-Key header string true "Replay protection key"
// @Param report_id path int true "Report id"
// @Param request body httptransport.CastVoteRequest true "Vote payload"
// @Success 200 {object} httptransport.VoteResponse
// @Failure 400 {object} httptransport.ErrorEnvelope
// @Failure 403 {object} httptransport.ErrorEnvelope
// @Failure 409 {object} httptransport.ErrorEnvelope
// @Router /api/moderation/v1/reports/{report_id}/votes [post]
func (h Handler) CastVoteHandler(
	ctx context.Context,
	principal string,
	idempotencyKey string,
	reportID uint64,
	req httptransport.CastVoteRequest,
) (httptransport.VoteResponse, error) {
	result, err := h.Engine.CastVote(ctx, commands.CastVoteCommand{
		Voter:          entities.Principal(principal),
		ReportID:       entities.ReportID(reportID),
		Approve:        req.Approve,
		Stake:          entities.Amount(req.Stake),
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	resp := mapVote(result.Vote)
	resp.Replayed = result.Replayed
	return resp, nil
}

// ListReportVotesHandler godoc
// @Summary Enumerate votes on a report
// @Tags moderation
// @Produce json
// @Param report_id path int true "Report id"
// @Success 200 {object} httptransport.ReportVotesResponse
// @Failure 404 {object} httptransport.ErrorEnvelope
// @Router /api/moderation/v1/reports/{report_id}/votes [get]
func (h Handler) ListReportVotesHandler(ctx context.Context, reportID uint64) (httptransport.ReportVotesResponse, error) {
	votes, err := h.Status.ListReportVotes(ctx, entities.ReportID(reportID))
	if err != nil {
		return httptransport.ReportVotesResponse{}, err
	}
	items := make([]httptransport.VoteResponse, 0, len(votes))
	for _, vote := range votes {
		items = append(items, mapVote(vote))
	}
	return httptransport.ReportVotesResponse{
		ReportID: reportID,
		Items:    items,
	}, nil
}

// ResolveReportHandler godoc
// @Summary Resolve a report after its voting window
// @Tags moderation
// @Produce json
// @Security BearerAuth
// @Param report_id path int true "Report id"
// @Success 200 {object} httptransport.ResolutionResponse
// @Failure 400 {object} httptransport.ErrorEnvelope
// @Failure 409 {object} httptransport.ErrorEnvelope
// @Router /api/moderation/v1/reports/{report_id}/resolve [post]
func (h Handler) ResolveReportHandler(ctx context.Context, reportID uint64) (httptransport.ResolutionResponse, error) {
	outcome, err := h.Engine.ResolveReport(ctx, commands.ResolveReportCommand{
		ReportID: entities.ReportID(reportID),
	})
	if err != nil {
		return httptransport.ResolutionResponse{}, err
	}
	return httptransport.ResolutionResponse{
		ReportID:     uint64(outcome.ReportID),
		Upheld:       outcome.Upheld,
		VotesFor:     outcome.VotesFor,
		VotesAgainst: outcome.VotesAgainst,
		TotalVotes:   outcome.TotalVotes,
	}, nil
}

// PromoteModeratorHandler godoc
// @Summary Promote a principal to moderator
// @Tags moderation
// @Produce json
// @Security BearerAuth
// @Param principal path string true "Principal"
// @Success 200 {object} httptransport.ReputationResponse
// @Failure 403 {object} httptransport.ErrorEnvelope
// @Router /api/moderation/v1/moderators/{principal} [post]
func (h Handler) PromoteModeratorHandler(ctx context.Context, principal string) (httptransport.ReputationResponse, error) {
	record, err := h.Engine.PromoteModerator(ctx, commands.PromoteModeratorCommand{
		Principal: entities.Principal(principal),
	})
	if err != nil {
		return httptransport.ReputationResponse{}, err
	}
	return mapReputation(record), nil
}

// GetReputationHandler godoc
// @Summary Get a principal's reputation record
// @Tags moderation
// @Produce json
// @Param principal path string true "Principal"
// @Success 200 {object} httptransport.ReputationResponse
// @Router /api/moderation/v1/reputation/{principal} [get]
func (h Handler) GetReputationHandler(ctx context.Context, principal string) (httptransport.ReputationResponse, error) {
	record, err := h.Status.GetReputation(ctx, entities.Principal(principal))
	if err != nil {
		return httptransport.ReputationResponse{}, err
	}
	return mapReputation(record), nil
}

// StatsHandler godoc
// @Summary Engine aggregate diagnostics
// @Tags moderation
// @Produce json
// @Success 200 {object} httptransport.StatsResponse
// @Router /api/moderation/v1/stats [get]
func (h Handler) StatsHandler(ctx context.Context) (httptransport.StatsResponse, error) {
	stats, err := h.Status.Stats(ctx)
	if err != nil {
		logger := application.ResolveLogger(h.Logger)
		logger.Error("stats request failed",
			"event", "http_moderation_stats_failed",
			"module", "moderation/report-engine",
			"layer", "transport",
			"error", err.Error(),
		)
		return httptransport.StatsResponse{}, err
	}
	return httptransport.StatsResponse{TotalStaked: uint64(stats.TotalStaked)}, nil
}

func mapPost(post entities.Post) httptransport.PostResponse {
	return httptransport.PostResponse{
		PostID:      uint64(post.PostID),
		Author:      string(post.Author),
		ContentRef:  hex.EncodeToString(post.ContentRef),
		CreatedAt:   uint64(post.CreatedAt),
		Status:      string(post.Status),
		ReportCount: post.ReportCount,
	}
}

func mapReport(report entities.Report) httptransport.ReportResponse {
	return httptransport.ReportResponse{
		ReportID:     uint64(report.ReportID),
		PostID:       uint64(report.PostID),
		Reporter:     string(report.Reporter),
		Reason:       report.Reason,
		Stake:        uint64(report.Stake),
		FiledAt:      uint64(report.FiledAt),
		VotingEndsAt: uint64(report.VotingEndsAt()),
		VotesFor:     report.VotesFor,
		VotesAgainst: report.VotesAgainst,
		Resolved:     report.Resolved,
	}
}

func mapVote(vote entities.Vote) httptransport.VoteResponse {
	return httptransport.VoteResponse{
		ReportID: uint64(vote.ReportID),
		Voter:    string(vote.Voter),
		Approve:  vote.Approve,
		Stake:    uint64(vote.Stake),
		CastAt:   uint64(vote.CastAt),
	}
}

func mapReputation(record entities.ReputationRecord) httptransport.ReputationResponse {
	return httptransport.ReputationResponse{
		Principal:   string(record.Principal),
		Score:       record.Score,
		IsModerator: record.IsModerator,
	}
}
