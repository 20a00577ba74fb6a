package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	moderationerrors "tribunal/contexts/moderation/report-engine/domain/errors"
	moderationhttp "tribunal/contexts/moderation/report-engine/transport/http"
)

func writeModerationError(w http.ResponseWriter, status int, code string, message string, details map[string]any) {
	writeJSON(w, status, moderationhttp.ErrorEnvelope{
		Status: "error",
		Error: moderationhttp.ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeModerationDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, moderationerrors.ErrInvalidRequest):
		writeModerationError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	case errors.Is(err, moderationerrors.ErrIdempotencyKeyRequired):
		writeModerationError(w, http.StatusBadRequest, "IDEMPOTENCY_KEY_REQUIRED", err.Error(), nil)
	case errors.Is(err, moderationerrors.ErrIdempotencyConflict):
		writeModerationError(w, http.StatusConflict, "IDEMPOTENCY_CONFLICT", err.Error(), nil)
	case errors.Is(err, moderationerrors.ErrPostNotFound),
		errors.Is(err, moderationerrors.ErrReportNotFound):
		writeModerationError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, moderationerrors.ErrInsufficientStake):
		writeModerationError(w, http.StatusBadRequest, "INSUFFICIENT_STAKE", err.Error(), nil)
	case errors.Is(err, moderationerrors.ErrDuplicateVote):
		writeModerationError(w, http.StatusConflict, "DUPLICATE_VOTE", err.Error(), nil)
	case errors.Is(err, moderationerrors.ErrTransferFailed),
		errors.Is(err, moderationerrors.ErrInsufficientFunds):
		writeModerationError(w, http.StatusPaymentRequired, "TRANSFER_FAILED", err.Error(), nil)
	case errors.Is(err, moderationerrors.ErrVotingPeriodEnded):
		writeModerationError(w, http.StatusConflict, "VOTING_PERIOD", err.Error(), nil)
	case errors.Is(err, moderationerrors.ErrInvalidVote):
		writeModerationError(w, http.StatusConflict, "NO_VOTES", err.Error(), nil)
	case errors.Is(err, moderationerrors.ErrNotModerator):
		writeModerationError(w, http.StatusForbidden, "NOT_MODERATOR", err.Error(), nil)
	case errors.Is(err, moderationerrors.ErrUnauthorized):
		writeModerationError(w, http.StatusForbidden, "PERMISSION_DENIED", err.Error(), nil)
	default:
		writeModerationError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
	}
}

func requireModerationAuthorization(w http.ResponseWriter, r *http.Request) bool {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		writeModerationError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization bearer token is required", nil)
		return false
	}
	return true
}

func requireModerationPrincipal(w http.ResponseWriter, r *http.Request) (string, bool) {
	principal := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if principal == "" {
		writeModerationError(w, http.StatusUnauthorized, "PRINCIPAL_REQUIRED", "X-User-Id header is required", nil)
		return "", false
	}
	return principal, true
}

func moderationPathID(w http.ResponseWriter, r *http.Request, name string) (uint64, bool) {
	raw := strings.TrimSpace(r.PathValue(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		writeModerationError(w, http.StatusBadRequest, "INVALID_ID", name+" must be a positive integer", nil)
		return 0, false
	}
	return id, true
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	if !requireModerationAuthorization(w, r) {
		return
	}
	principal, ok := requireModerationPrincipal(w, r)
	if !ok {
		return
	}
	var req moderationhttp.CreatePostRequest
	if !s.decodeJSON(w, r, &req, func(w http.ResponseWriter, status int, code string, message string) {
		writeModerationError(w, status, strings.ToUpper(code), message, nil)
	}) {
		return
	}
	resp, err := s.moderation.Handler.CreatePostHandler(r.Context(), principal, req)
	if err != nil {
		writeModerationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	postID, ok := moderationPathID(w, r, "post_id")
	if !ok {
		return
	}
	resp, err := s.moderation.Handler.GetPostHandler(r.Context(), postID)
	if err != nil {
		writeModerationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFileReport(w http.ResponseWriter, r *http.Request) {
	if !requireModerationAuthorization(w, r) {
		return
	}
	principal, ok := requireModerationPrincipal(w, r)
	if !ok {
		return
	}
	var req moderationhttp.FileReportRequest
	if !s.decodeJSON(w, r, &req, func(w http.ResponseWriter, status int, code string, message string) {
		writeModerationError(w, status, strings.ToUpper(code), message, nil)
	}) {
		return
	}
	resp, err := s.moderation.Handler.FileReportHandler(r.Context(), principal, r.Header.Get("Idempotency-Key"), req)
	if err != nil {
		writeModerationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	reportID, ok := moderationPathID(w, r, "report_id")
	if !ok {
		return
	}
	resp, err := s.moderation.Handler.GetReportHandler(r.Context(), reportID)
	if err != nil {
		writeModerationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	if !requireModerationAuthorization(w, r) {
		return
	}
	principal, ok := requireModerationPrincipal(w, r)
	if !ok {
		return
	}
	reportID, ok := moderationPathID(w, r, "report_id")
	if !ok {
		return
	}
	var req moderationhttp.CastVoteRequest
	if !s.decodeJSON(w, r, &req, func(w http.ResponseWriter, status int, code string, message string) {
		writeModerationError(w, status, strings.ToUpper(code), message, nil)
	}) {
		return
	}
	resp, err := s.moderation.Handler.CastVoteHandler(r.Context(), principal, r.Header.Get("Idempotency-Key"), reportID, req)
	if err != nil {
		writeModerationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListReportVotes(w http.ResponseWriter, r *http.Request) {
	reportID, ok := moderationPathID(w, r, "report_id")
	if !ok {
		return
	}
	resp, err := s.moderation.Handler.ListReportVotesHandler(r.Context(), reportID)
	if err != nil {
		writeModerationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResolveReport(w http.ResponseWriter, r *http.Request) {
	if !requireModerationAuthorization(w, r) {
		return
	}
	if _, ok := requireModerationPrincipal(w, r); !ok {
		return
	}
	reportID, ok := moderationPathID(w, r, "report_id")
	if !ok {
		return
	}
	resp, err := s.moderation.Handler.ResolveReportHandler(r.Context(), reportID)
	if err != nil {
		writeModerationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePromoteModerator(w http.ResponseWriter, r *http.Request) {
	if !requireModerationAuthorization(w, r) {
		return
	}
	if _, ok := requireModerationPrincipal(w, r); !ok {
		return
	}
	principal := strings.TrimSpace(r.PathValue("principal"))
	if principal == "" {
		writeModerationError(w, http.StatusBadRequest, "INVALID_ID", "principal is required", nil)
		return
	}
	resp, err := s.moderation.Handler.PromoteModeratorHandler(r.Context(), principal)
	if err != nil {
		writeModerationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetReputation(w http.ResponseWriter, r *http.Request) {
	principal := strings.TrimSpace(r.PathValue("principal"))
	if principal == "" {
		writeModerationError(w, http.StatusBadRequest, "INVALID_ID", "principal is required", nil)
		return
	}
	resp, err := s.moderation.Handler.GetReputationHandler(r.Context(), principal)
	if err != nil {
		writeModerationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp, err := s.moderation.Handler.StatsHandler(r.Context())
	if err != nil {
		writeModerationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
