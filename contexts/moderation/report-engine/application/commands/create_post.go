package commands

import (
	"context"
	"strconv"
	"strings"

	"tribunal/contexts/moderation/report-engine/domain/entities"
	domainerrors "tribunal/contexts/moderation/report-engine/domain/errors"
)

// CreatePostCommand registers a content item with the post registry.
type CreatePostCommand struct {
	Author     entities.Principal
	ContentRef []byte
}

// CreatePost allocates the next sequential post id and stores an active post
// with a zero report count.
func (uc *EngineUseCase) CreatePost(ctx context.Context, cmd CreatePostCommand) (entities.Post, error) {
	logger := uc.logger()
	if strings.TrimSpace(string(cmd.Author)) == "" || len(cmd.ContentRef) != entities.ContentRefSize {
		logger.Warn("create post validation failed",
			"event", "moderation_create_post_validation_failed",
			"module", "moderation/report-engine",
			"layer", "application",
			"author", string(cmd.Author),
			"content_ref_len", len(cmd.ContentRef),
		)
		return entities.Post{}, domainerrors.ErrInvalidRequest
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	now := uc.Clock.Now()
	post := entities.Post{
		Author:     cmd.Author,
		ContentRef: append([]byte(nil), cmd.ContentRef...),
		CreatedAt:  now,
		Status:     entities.PostStatusActive,
	}
	err := uc.atomically(ctx, func(ctx context.Context) error {
		postID, err := uc.Posts.InsertPost(ctx, post)
		if err != nil {
			return err
		}
		post.PostID = postID
		return uc.appendEvent(ctx, "moderation.post.created", strconv.FormatUint(uint64(postID), 10), map[string]any{
			"post_id":    uint64(postID),
			"author":     string(post.Author),
			"created_at": uint64(now),
		})
	})
	if err != nil {
		return entities.Post{}, err
	}

	logger.Info("post created",
		"event", "moderation_post_created",
		"module", "moderation/report-engine",
		"layer", "application",
		"post_id", uint64(post.PostID),
		"author", string(post.Author),
		"height", uint64(now),
	)
	return post, nil
}
