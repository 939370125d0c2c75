package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"autosocial/internal/models"
	"autosocial/internal/repository"
	"autosocial/internal/transfer"
)

type PostService interface {
	Create(ctx context.Context, userID string, pc *transfer.PostCreation) (*models.Post, error)
	Get(ctx context.Context, userID, postID string) (*models.Post, error)
	List(ctx context.Context, userID string) ([]*models.Post, error)
	Update(ctx context.Context, userID, postID string, pu *transfer.PostUpdate) (*models.Post, error)
	Remove(ctx context.Context, userID, postID string) error
}

type postService struct {
	pr    repository.PostRepository
	media MediaService
	now   func() time.Time
}

func NewPostService(pr repository.PostRepository, media MediaService) PostService {
	return &postService{
		pr:    pr,
		media: media,
		now:   time.Now,
	}
}

func (s *postService) Create(ctx context.Context, userID string, pc *transfer.PostCreation) (*models.Post, error) {
	if userID == "" {
		return nil, models.ErrAccessDenied
	}
	if pc == nil {
		return nil, models.NewValidationError("post data is missing")
	}
	if pc.Content == "" {
		return nil, models.NewValidationError("content is required")
	}

	scheduledFor, err := parseScheduledFor(pc.ScheduledFor)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	now := s.now().UTC()
	post := &models.Post{
		ID:           id.String(),
		UserID:       userID,
		Content:      pc.Content,
		MediaRef:     pc.MediaRef,
		ScheduledFor: scheduledFor,
		Status:       models.PostStatusDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if scheduledFor != nil {
		post.Status = models.PostStatusScheduled
	}

	if err := s.pr.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("%w: creating post: %v", models.ErrStoreWrite, err)
	}

	return post, nil
}

func (s *postService) Get(ctx context.Context, userID, postID string) (*models.Post, error) {
	return s.getOwned(ctx, userID, postID)
}

func (s *postService) List(ctx context.Context, userID string) ([]*models.Post, error) {
	if userID == "" {
		return nil, models.ErrAccessDenied
	}
	posts, err := s.pr.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	return posts, nil
}

func (s *postService) Update(ctx context.Context, userID, postID string, pu *transfer.PostUpdate) (*models.Post, error) {
	post, err := s.getOwned(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if pu == nil {
		return nil, models.NewValidationError("update data is missing")
	}
	if post.Terminal() {
		return nil, models.NewValidationError("post %s is in a terminal state (%s)", post.ID, post.Status)
	}

	fields := make(map[string]any)

	if pu.Content != nil {
		if *pu.Content == "" {
			return nil, models.NewValidationError("content is required")
		}
		fields["content"] = *pu.Content
	}
	if pu.MediaRef != nil {
		fields["media_ref"] = *pu.MediaRef
	}
	if pu.ScheduledFor != nil {
		scheduledFor, err := parseScheduledFor(*pu.ScheduledFor)
		if err != nil {
			return nil, err
		}
		if scheduledFor == nil {
			return nil, models.NewValidationError("scheduled_for is empty")
		}
		fields["scheduled_for"] = *scheduledFor
		if pu.Status == nil && post.Status == models.PostStatusDraft {
			fields["status"] = models.PostStatusScheduled
		}
	}
	if pu.Status != nil {
		if *pu.Status != models.PostStatusDraft && *pu.Status != models.PostStatusScheduled {
			return nil, models.NewValidationError("status %s can only be set by the publish path", *pu.Status)
		}
		fields["status"] = *pu.Status
	}

	fields["updated_at"] = s.now().UTC()

	updated, err := s.pr.Update(ctx, postID, fields)
	if err != nil {
		// a delete racing the ownership check surfaces as not found,
		// which callers treat as idempotent-safe
		return nil, err
	}
	return updated, nil
}

func (s *postService) Remove(ctx context.Context, userID, postID string) error {
	post, err := s.getOwned(ctx, userID, postID)
	if err != nil {
		return err
	}

	if post.MediaRef != "" {
		// best effort: an orphaned media object must not block the delete
		if err := s.media.Delete(ctx, post.MediaRef); err != nil {
			slog.Warn("error deleting media for post " + post.ID + ": " + err.Error())
		}
	}

	if err := s.pr.Remove(ctx, postID); err != nil {
		return fmt.Errorf("%w: removing post: %v", models.ErrStoreWrite, err)
	}
	return nil
}

func (s *postService) getOwned(ctx context.Context, userID, postID string) (*models.Post, error) {
	if userID == "" {
		return nil, models.ErrAccessDenied
	}
	if postID == "" {
		return nil, models.NewValidationError("post id is required")
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("error getting post: %w", err)
	}
	if post == nil {
		return nil, models.ErrNotFound
	}
	if post.UserID != userID {
		slog.Info("post " + postID + " requested by non-owner")
		return nil, models.ErrAccessDenied
	}
	return post, nil
}

func parseScheduledFor(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, models.NewValidationError("invalid scheduled_for format: %v", err)
	}
	t = t.UTC().Truncate(time.Second)
	return &t, nil
}
