package entities

const (
	// DefaultReputation is the score assumed for a principal that has never
	// been written to the reputation store.
	DefaultReputation uint64 = 100

	// ReputationReward and ReputationPenalty are applied to the winning and
	// losing side of a resolved report.
	ReputationReward  uint64 = 5
	ReputationPenalty uint64 = 10

	// ModeratorThreshold gates promotion to the voting pool.
	ModeratorThreshold uint64 = 5_000_000
)

// ReputationRecord tracks a principal's score and moderator flag. Records are
// never deleted; an absent record behaves as DefaultReputation/non-moderator.
type ReputationRecord struct {
	Principal   Principal
	Score       uint64
	IsModerator bool
}

// NewReputationRecord returns the implicit record for an unseen principal.
func NewReputationRecord(principal Principal) ReputationRecord {
	return ReputationRecord{
		Principal: principal,
		Score:     DefaultReputation,
	}
}

// ApplyDelta adjusts Score by a signed delta with saturation at zero. The
// moderator flag is never touched here.
func (r *ReputationRecord) ApplyDelta(delta int64) {
	if delta >= 0 {
		r.Score += uint64(delta)
		return
	}
	loss := uint64(-delta)
	if loss >= r.Score {
		r.Score = 0
		return
	}
	r.Score -= loss
}

// CanModerate reports whether the record clears the promotion threshold.
func (r ReputationRecord) CanModerate() bool {
	return r.Score >= ModeratorThreshold
}
