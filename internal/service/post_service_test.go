package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autosocial/internal/models"
	"autosocial/internal/transfer"
)

func newTestPostService(repo *fakePostRepo, media *fakeMediaService, now time.Time) *postService {
	return &postService{
		pr:    repo,
		media: media,
		now:   func() time.Time { return now },
	}
}

func strPtr(s string) *string { return &s }

func TestPostServiceCreate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("created post is durable and readable", func(t *testing.T) {
		repo := newFakePostRepo()
		svc := newTestPostService(repo, &fakeMediaService{}, now)

		created, err := svc.Create(ctx, "user-1", &transfer.PostCreation{Content: "hello world"})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, models.PostStatusDraft, created.Status)

		got, err := svc.Get(ctx, "user-1", created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("scheduled time makes the post scheduled", func(t *testing.T) {
		repo := newFakePostRepo()
		svc := newTestPostService(repo, &fakeMediaService{}, now)

		created, err := svc.Create(ctx, "user-1", &transfer.PostCreation{
			Content:      "hello",
			ScheduledFor: "2026-03-02T09:30:00Z",
		})
		require.NoError(t, err)
		assert.Equal(t, models.PostStatusScheduled, created.Status)
		require.NotNil(t, created.ScheduledFor)
		assert.Equal(t, time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC), *created.ScheduledFor)
	})

	t.Run("empty content is rejected", func(t *testing.T) {
		svc := newTestPostService(newFakePostRepo(), &fakeMediaService{}, now)

		_, err := svc.Create(ctx, "user-1", &transfer.PostCreation{Content: ""})
		assert.True(t, models.IsValidation(err))
	})

	t.Run("malformed scheduled time is rejected", func(t *testing.T) {
		svc := newTestPostService(newFakePostRepo(), &fakeMediaService{}, now)

		_, err := svc.Create(ctx, "user-1", &transfer.PostCreation{
			Content:      "hello",
			ScheduledFor: "tomorrow at nine",
		})
		assert.True(t, models.IsValidation(err))
	})

	t.Run("store failure surfaces as write error", func(t *testing.T) {
		repo := newFakePostRepo()
		repo.createErr = errors.New("throughput exceeded")
		svc := newTestPostService(repo, &fakeMediaService{}, now)

		_, err := svc.Create(ctx, "user-1", &transfer.PostCreation{Content: "hello"})
		assert.True(t, errors.Is(err, models.ErrStoreWrite))
	})
}

func TestPostServiceOwnership(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	repo := newFakePostRepo()
	svc := newTestPostService(repo, &fakeMediaService{}, now)
	created, err := svc.Create(ctx, "user-1", &transfer.PostCreation{Content: "mine"})
	require.NoError(t, err)

	t.Run("get by non-owner is denied", func(t *testing.T) {
		_, err := svc.Get(ctx, "user-2", created.ID)
		assert.True(t, errors.Is(err, models.ErrAccessDenied))
	})

	t.Run("update by non-owner is denied", func(t *testing.T) {
		_, err := svc.Update(ctx, "user-2", created.ID, &transfer.PostUpdate{Content: strPtr("theirs")})
		assert.True(t, errors.Is(err, models.ErrAccessDenied))

		got, err := svc.Get(ctx, "user-1", created.ID)
		require.NoError(t, err)
		assert.Equal(t, "mine", got.Content)
	})

	t.Run("remove by non-owner is denied", func(t *testing.T) {
		err := svc.Remove(ctx, "user-2", created.ID)
		assert.True(t, errors.Is(err, models.ErrAccessDenied))

		_, err = svc.Get(ctx, "user-1", created.ID)
		assert.NoError(t, err)
	})

	t.Run("missing post is not found", func(t *testing.T) {
		_, err := svc.Get(ctx, "user-1", "no-such-post")
		assert.True(t, errors.Is(err, models.ErrNotFound))
	})
}

func TestPostServiceUpdate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("partial update leaves other fields intact", func(t *testing.T) {
		repo := newFakePostRepo()
		svc := newTestPostService(repo, &fakeMediaService{}, now)
		created, err := svc.Create(ctx, "user-1", &transfer.PostCreation{
			Content:  "original",
			MediaRef: "s3://media/abc",
		})
		require.NoError(t, err)

		updated, err := svc.Update(ctx, "user-1", created.ID, &transfer.PostUpdate{Content: strPtr("revised")})
		require.NoError(t, err)
		assert.Equal(t, "revised", updated.Content)
		assert.Equal(t, "s3://media/abc", updated.MediaRef)
		assert.Equal(t, created.Status, updated.Status)
	})

	t.Run("scheduling a draft flips it to scheduled", func(t *testing.T) {
		repo := newFakePostRepo()
		svc := newTestPostService(repo, &fakeMediaService{}, now)
		created, err := svc.Create(ctx, "user-1", &transfer.PostCreation{Content: "draft"})
		require.NoError(t, err)

		updated, err := svc.Update(ctx, "user-1", created.ID, &transfer.PostUpdate{
			ScheduledFor: strPtr("2026-03-02T09:00:00Z"),
		})
		require.NoError(t, err)
		assert.Equal(t, models.PostStatusScheduled, updated.Status)
	})

	t.Run("published and failed posts reject updates", func(t *testing.T) {
		for _, status := range []string{models.PostStatusPublished, models.PostStatusFailed} {
			repo := newFakePostRepo()
			svc := newTestPostService(repo, &fakeMediaService{}, now)
			created, err := svc.Create(ctx, "user-1", &transfer.PostCreation{
				Content:      "done",
				ScheduledFor: "2026-03-02T09:00:00Z",
			})
			require.NoError(t, err)
			require.NoError(t, repo.UpdateStatus(ctx, created.ID, models.PostStatusScheduled, status, ""))

			_, err = svc.Update(ctx, "user-1", created.ID, &transfer.PostUpdate{Content: strPtr("late edit")})
			assert.True(t, models.IsValidation(err), "status %s", status)

			got, err := svc.Get(ctx, "user-1", created.ID)
			require.NoError(t, err)
			assert.Equal(t, "done", got.Content)
		}
	})

	t.Run("terminal statuses cannot be set directly", func(t *testing.T) {
		repo := newFakePostRepo()
		svc := newTestPostService(repo, &fakeMediaService{}, now)
		created, err := svc.Create(ctx, "user-1", &transfer.PostCreation{Content: "draft"})
		require.NoError(t, err)

		_, err = svc.Update(ctx, "user-1", created.ID, &transfer.PostUpdate{
			Status: strPtr(models.PostStatusPublished),
		})
		assert.True(t, models.IsValidation(err))
	})
}

func TestPostServiceRemove(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("delete cascades to the media object once", func(t *testing.T) {
		repo := newFakePostRepo()
		media := &fakeMediaService{}
		svc := newTestPostService(repo, media, now)
		created, err := svc.Create(ctx, "user-1", &transfer.PostCreation{
			Content:  "with media",
			MediaRef: "s3://media/xyz",
		})
		require.NoError(t, err)

		require.NoError(t, svc.Remove(ctx, "user-1", created.ID))
		assert.Equal(t, []string{"s3://media/xyz"}, media.deleted)

		_, err = svc.Get(ctx, "user-1", created.ID)
		assert.True(t, errors.Is(err, models.ErrNotFound))
	})

	t.Run("media delete failure does not block the record delete", func(t *testing.T) {
		repo := newFakePostRepo()
		media := &fakeMediaService{deleteErr: errors.New("object store unavailable")}
		svc := newTestPostService(repo, media, now)
		created, err := svc.Create(ctx, "user-1", &transfer.PostCreation{
			Content:  "with media",
			MediaRef: "s3://media/xyz",
		})
		require.NoError(t, err)

		require.NoError(t, svc.Remove(ctx, "user-1", created.ID))

		_, err = svc.Get(ctx, "user-1", created.ID)
		assert.True(t, errors.Is(err, models.ErrNotFound))
	})

	t.Run("post without media skips the cascade", func(t *testing.T) {
		repo := newFakePostRepo()
		media := &fakeMediaService{}
		svc := newTestPostService(repo, media, now)
		created, err := svc.Create(ctx, "user-1", &transfer.PostCreation{Content: "text only"})
		require.NoError(t, err)

		require.NoError(t, svc.Remove(ctx, "user-1", created.ID))
		assert.Empty(t, media.deleted)
	})
}
