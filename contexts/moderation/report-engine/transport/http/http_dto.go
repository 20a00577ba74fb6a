package http

type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Status    string    `json:"status"`
	Error     ErrorBody `json:"error"`
	Timestamp string    `json:"timestamp"`
}

type CreatePostRequest struct {
	// ContentRef is the hex encoding of the opaque 64-byte content identifier.
	ContentRef string `json:"content_ref"`
}

type PostResponse struct {
	PostID      uint64 `json:"post_id"`
	Author      string `json:"author"`
	ContentRef  string `json:"content_ref"`
	CreatedAt   uint64 `json:"created_at"`
	Status      string `json:"status"`
	ReportCount uint64 `json:"report_count"`
}

type FileReportRequest struct {
	PostID uint64 `json:"post_id"`
	Reason string `json:"reason"`
	Stake  uint64 `json:"stake"`
}

type ReportResponse struct {
	ReportID     uint64 `json:"report_id"`
	PostID       uint64 `json:"post_id"`
	Reporter     string `json:"reporter"`
	Reason       string `json:"reason"`
	Stake        uint64 `json:"stake"`
	FiledAt      uint64 `json:"filed_at"`
	VotingEndsAt uint64 `json:"voting_ends_at"`
	VotesFor     uint64 `json:"votes_for"`
	VotesAgainst uint64 `json:"votes_against"`
	Resolved     bool   `json:"resolved"`
	Replayed     bool   `json:"replayed,omitempty"`
}

type CastVoteRequest struct {
	Approve bool   `json:"approve"`
	Stake   uint64 `json:"stake"`
}

type VoteResponse struct {
	ReportID uint64 `json:"report_id"`
	Voter    string `json:"voter"`
	Approve  bool   `json:"approve"`
	Stake    uint64 `json:"stake"`
	CastAt   uint64 `json:"cast_at"`
	Replayed bool   `json:"replayed,omitempty"`
}

type ReportVotesResponse struct {
	ReportID uint64         `json:"report_id"`
	Items    []VoteResponse `json:"items"`
}

type ResolutionResponse struct {
	ReportID     uint64 `json:"report_id"`
	Upheld       bool   `json:"upheld"`
	VotesFor     uint64 `json:"votes_for"`
	VotesAgainst uint64 `json:"votes_against"`
	TotalVotes   uint64 `json:"total_votes"`
}

type ReputationResponse struct {
	Principal   string `json:"principal"`
	Score       uint64 `json:"score"`
	IsModerator bool   `json:"is_moderator"`
}

type StatsResponse struct {
	TotalStaked uint64 `json:"total_staked"`
}
