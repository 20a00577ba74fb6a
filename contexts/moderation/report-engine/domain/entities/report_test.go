package entities

import "testing"

func TestVotingWindowBoundary(t *testing.T) {
	report := Report{FiledAt: 1000}

	if got := report.VotingEndsAt(); got != 1144 {
		t.Fatalf("expected voting to end at 1144, got %d", got)
	}
	if !report.VotingOpen(1000) {
		t.Fatalf("expected window open at filing height")
	}
	if !report.VotingOpen(1143) {
		t.Fatalf("expected window open one height before the deadline")
	}
	if report.VotingOpen(1144) {
		t.Fatalf("expected window closed exactly at the deadline")
	}
}

func TestVotingClosedOnceResolved(t *testing.T) {
	report := Report{FiledAt: 1000, Resolved: true}
	if report.VotingOpen(1001) {
		t.Fatalf("expected resolved report to reject votes inside the window")
	}
}

func TestUpheldRequiresStrictMajority(t *testing.T) {
	cases := []struct {
		votesFor     uint64
		votesAgainst uint64
		upheld       bool
	}{
		{3, 1, true},
		{1, 3, false},
		{2, 2, false},
		{1, 0, true},
		{0, 1, false},
	}
	for _, tc := range cases {
		report := Report{VotesFor: tc.votesFor, VotesAgainst: tc.votesAgainst}
		if report.Upheld() != tc.upheld {
			t.Fatalf("votes %d/%d: expected upheld=%v", tc.votesFor, tc.votesAgainst, tc.upheld)
		}
	}
}
