package entities

const (
	// MinStakeAmount bonds both report filing and voting.
	MinStakeAmount Amount = 1_000_000

	// UpholdBonus is paid to the reporter on top of the returned stake when a
	// report is upheld.
	UpholdBonus Amount = 500_000

	// VotingPeriod is the number of height units after filing during which
	// votes are accepted. The deadline boundary is strict: a vote at exactly
	// FiledAt+VotingPeriod is already late.
	VotingPeriod Height = 144

	// ReasonMaxBytes bounds the free-form report reason.
	ReasonMaxBytes = 100
)

// EscrowAccount holds every stake escrowed by the engine until resolution.
const EscrowAccount Principal = "tribunal-escrow"

// Report is the unit of the moderation state machine. After creation only the
// vote tallies and Resolved may change; Resolved is terminal.
type Report struct {
	ReportID     ReportID
	PostID       PostID
	Reporter     Principal
	Reason       string
	Stake        Amount
	FiledAt      Height
	VotesFor     uint64
	VotesAgainst uint64
	Resolved     bool
}

// VotingEndsAt is the first height at which votes are rejected and resolution
// becomes possible.
func (r Report) VotingEndsAt() Height {
	return r.FiledAt + VotingPeriod
}

// VotingOpen reports whether a vote arriving at now is still inside the window.
func (r Report) VotingOpen(now Height) bool {
	return !r.Resolved && now < r.VotingEndsAt()
}

// Upheld applies the strict-majority rule; ties go against removal.
func (r Report) Upheld() bool {
	return r.VotesFor > r.VotesAgainst
}

func (r Report) TotalVotes() uint64 {
	return r.VotesFor + r.VotesAgainst
}

// ResolutionOutcome is returned by report resolution.
type ResolutionOutcome struct {
	ReportID     ReportID
	Upheld       bool
	VotesFor     uint64
	VotesAgainst uint64
	TotalVotes   uint64
}
