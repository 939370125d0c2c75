package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"autosocial/internal/models"
)

func (j *Queue) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	return j.PublishPost(ctx, payload.PostID)
}

func (j *Queue) PublishPost(ctx context.Context, postID string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	post, err := j.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		// deleted between nomination and dispatch; nothing to do
		log.Printf("Post %s no longer exists, skipping publish", postID)
		return nil
	}

	// a schedule firing and a direct enqueue can both nominate the same
	// post; whoever runs second sees a terminal status and backs off
	if post.Status != models.PostStatusScheduled {
		log.Printf("Post %s is %s, skipping publish", post.ID, post.Status)
		return nil
	}

	token, err := j.tk.GetValidLongLivedToken(ctx)
	if err != nil {
		log.Printf("Error obtaining publish token for post %s: %v", post.ID, err)
		return err
	}

	updated, pubErr := j.fb.PublishPost(ctx, post, token)
	if updated == nil {
		return pubErr
	}

	history := models.PublishHistory{
		UserID:       updated.UserID,
		PostID:       updated.ID,
		ErrorMessage: updated.ErrorMessage,
	}
	if _, err := j.ph.Create(ctx, &history); err != nil {
		log.Printf("Error saving publish history for post %s: %v", updated.ID, err)
	}

	if pubErr != nil && errors.Is(pubErr, models.ErrUpstreamTimeout) {
		// the terminal status is already recorded; retrying the task
		// would be a no-op
		log.Printf("Publish for post %s timed out: %v", updated.ID, pubErr)
		return nil
	}

	return pubErr
}
