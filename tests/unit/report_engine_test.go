package unit

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"testing"

	reportengine "tribunal/contexts/moderation/report-engine"
	"tribunal/contexts/moderation/report-engine/domain/entities"
	domainerrors "tribunal/contexts/moderation/report-engine/domain/errors"
	httptransport "tribunal/contexts/moderation/report-engine/transport/http"

	"github.com/google/uuid"
)

func seededModule() reportengine.Module {
	module := reportengine.NewInMemoryModule(nil)
	module.Ledger.Credit("reporter-1", 4*entities.MinStakeAmount)
	module.Ledger.Credit("author-1", entities.MinStakeAmount)
	for _, mod := range []entities.Principal{"mod-1", "mod-2", "mod-3"} {
		module.Store.SetReputation(entities.ReputationRecord{
			Principal:   mod,
			Score:       entities.DefaultReputation,
			IsModerator: true,
		})
		module.Ledger.Credit(mod, 2*entities.MinStakeAmount)
	}
	return module
}

func contentRef() string {
	return hex.EncodeToString(bytes.Repeat([]byte{0x5a}, entities.ContentRefSize))
}

func TestReportLifecycleUpheld(t *testing.T) {
	module := seededModule()
	ctx := context.Background()

	post, err := module.Handler.CreatePostHandler(ctx, "author-1", httptransport.CreatePostRequest{
		ContentRef: contentRef(),
	})
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}

	report, err := module.Handler.FileReportHandler(ctx, "reporter-1", uuid.NewString(), httptransport.FileReportRequest{
		PostID: post.PostID,
		Reason: "off-topic spam",
		Stake:  uint64(entities.MinStakeAmount),
	})
	if err != nil {
		t.Fatalf("file report failed: %v", err)
	}

	flagged, err := module.Handler.GetPostHandler(ctx, post.PostID)
	if err != nil {
		t.Fatalf("get post failed: %v", err)
	}
	if flagged.Status != string(entities.PostStatusFlagged) {
		t.Fatalf("expected flagged post, got %s", flagged.Status)
	}

	for _, vote := range []struct {
		voter   string
		approve bool
	}{
		{"mod-1", true},
		{"mod-2", true},
		{"mod-3", false},
	} {
		_, err := module.Handler.CastVoteHandler(ctx, vote.voter, uuid.NewString(), report.ReportID, httptransport.CastVoteRequest{
			Approve: vote.approve,
			Stake:   uint64(entities.MinStakeAmount),
		})
		if err != nil {
			t.Fatalf("vote by %s failed: %v", vote.voter, err)
		}
	}

	module.Clock.Set(entities.Height(report.FiledAt) + entities.VotingPeriod)
	outcome, err := module.Handler.ResolveReportHandler(ctx, report.ReportID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !outcome.Upheld {
		t.Fatalf("expected report upheld, got %+v", outcome)
	}

	removed, err := module.Handler.GetPostHandler(ctx, post.PostID)
	if err != nil {
		t.Fatalf("get post failed: %v", err)
	}
	if removed.Status != string(entities.PostStatusRemoved) {
		t.Fatalf("expected removed post, got %s", removed.Status)
	}

	wantReporter := 3*entities.MinStakeAmount + entities.MinStakeAmount + entities.UpholdBonus
	if got := module.Ledger.Balance("reporter-1"); got != wantReporter {
		t.Fatalf("expected reporter balance %d, got %d", wantReporter, got)
	}

	author, err := module.Handler.GetReputationHandler(ctx, "author-1")
	if err != nil {
		t.Fatalf("get reputation failed: %v", err)
	}
	if author.Score != entities.DefaultReputation-entities.ReputationPenalty {
		t.Fatalf("expected author score %d, got %d", entities.DefaultReputation-entities.ReputationPenalty, author.Score)
	}
}

func TestReportLifecycleTieRestoresPost(t *testing.T) {
	module := seededModule()
	ctx := context.Background()

	post, err := module.Handler.CreatePostHandler(ctx, "author-1", httptransport.CreatePostRequest{
		ContentRef: contentRef(),
	})
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	report, err := module.Handler.FileReportHandler(ctx, "reporter-1", uuid.NewString(), httptransport.FileReportRequest{
		PostID: post.PostID,
		Reason: "dispute",
		Stake:  uint64(entities.MinStakeAmount),
	})
	if err != nil {
		t.Fatalf("file report failed: %v", err)
	}

	if _, err := module.Handler.CastVoteHandler(ctx, "mod-1", uuid.NewString(), report.ReportID, httptransport.CastVoteRequest{
		Approve: true, Stake: uint64(entities.MinStakeAmount),
	}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if _, err := module.Handler.CastVoteHandler(ctx, "mod-2", uuid.NewString(), report.ReportID, httptransport.CastVoteRequest{
		Approve: false, Stake: uint64(entities.MinStakeAmount),
	}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	module.Clock.Set(entities.Height(report.FiledAt) + entities.VotingPeriod)
	outcome, err := module.Handler.ResolveReportHandler(ctx, report.ReportID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if outcome.Upheld {
		t.Fatalf("expected tie to keep the post")
	}

	restored, err := module.Handler.GetPostHandler(ctx, post.PostID)
	if err != nil {
		t.Fatalf("get post failed: %v", err)
	}
	if restored.Status != string(entities.PostStatusActive) {
		t.Fatalf("expected active post after tie, got %s", restored.Status)
	}

	wantAuthor := entities.MinStakeAmount + entities.MinStakeAmount
	if got := module.Ledger.Balance("author-1"); got != wantAuthor {
		t.Fatalf("expected author to receive forfeited stake, balance %d", got)
	}

	if _, err := module.Handler.ResolveReportHandler(ctx, report.ReportID); !errors.Is(err, domainerrors.ErrVotingPeriodEnded) {
		t.Fatalf("expected second resolve rejected, got %v", err)
	}
}

func TestVoteAfterDeadlineRejected(t *testing.T) {
	module := seededModule()
	ctx := context.Background()

	post, err := module.Handler.CreatePostHandler(ctx, "author-1", httptransport.CreatePostRequest{
		ContentRef: contentRef(),
	})
	if err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	report, err := module.Handler.FileReportHandler(ctx, "reporter-1", uuid.NewString(), httptransport.FileReportRequest{
		PostID: post.PostID,
		Stake:  uint64(entities.MinStakeAmount),
	})
	if err != nil {
		t.Fatalf("file report failed: %v", err)
	}

	module.Clock.Set(entities.Height(report.FiledAt) + entities.VotingPeriod)
	_, err = module.Handler.CastVoteHandler(ctx, "mod-1", uuid.NewString(), report.ReportID, httptransport.CastVoteRequest{
		Approve: true, Stake: uint64(entities.MinStakeAmount),
	})
	if !errors.Is(err, domainerrors.ErrVotingPeriodEnded) {
		t.Fatalf("expected vote at deadline rejected, got %v", err)
	}
}
