package entities

// Vote records one moderator's choice on one report. The (ReportID, Voter)
// pair is unique and immutable once written; votes are never retracted in the
// current resolution rule.
type Vote struct {
	ReportID ReportID
	Voter    Principal
	Approve  bool
	Stake    Amount
	CastAt   Height
}
