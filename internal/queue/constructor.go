package queue

import (
	"autosocial/internal/repository"
	"autosocial/internal/service"
)

type Queue struct {
	pr repository.PostRepository
	ph repository.PublishHistoryRepository
	fb service.FacebookService
	tk service.TokenService
}

func NewQueue(
	pr repository.PostRepository,
	ph repository.PublishHistoryRepository,
	fb service.FacebookService,
	tk service.TokenService) *Queue {
	return &Queue{
		pr: pr,
		ph: ph,
		fb: fb,
		tk: tk,
	}
}

const TaskTypePublishPost = "publish:post"

type PublishPostPayload struct {
	PostID string `json:"post_id"`
}
