package commands

import (
	"context"
	"strings"

	"tribunal/contexts/moderation/report-engine/domain/entities"
	domainerrors "tribunal/contexts/moderation/report-engine/domain/errors"
)

// PromoteModeratorCommand grants voting rights to a principal whose score has
// crossed the moderator threshold.
type PromoteModeratorCommand struct {
	Principal entities.Principal
}

func (uc *EngineUseCase) PromoteModerator(ctx context.Context, cmd PromoteModeratorCommand) (entities.ReputationRecord, error) {
	logger := uc.logger()
	principal := entities.Principal(strings.TrimSpace(string(cmd.Principal)))
	if principal == "" {
		return entities.ReputationRecord{}, domainerrors.ErrInvalidRequest
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	record, err := uc.Reputation.GetReputation(ctx, principal)
	if err != nil {
		return entities.ReputationRecord{}, err
	}
	if !record.CanModerate() {
		logger.Warn("moderator promotion refused",
			"event", "moderation_promote_refused",
			"module", "moderation/report-engine",
			"layer", "application",
			"principal", string(principal),
			"score", record.Score,
		)
		return entities.ReputationRecord{}, domainerrors.ErrUnauthorized
	}
	record.IsModerator = true
	err = uc.atomically(ctx, func(ctx context.Context) error {
		if err := uc.Reputation.PutReputation(ctx, record); err != nil {
			return err
		}
		return uc.appendEvent(ctx, "moderation.moderator.promoted", string(principal), map[string]any{
			"principal": string(principal),
			"score":     record.Score,
		})
	})
	if err != nil {
		return entities.ReputationRecord{}, err
	}

	logger.Info("moderator promoted",
		"event", "moderation_moderator_promoted",
		"module", "moderation/report-engine",
		"layer", "application",
		"principal", string(principal),
		"score", record.Score,
	)
	return record, nil
}
