package models

import "time"

type Post struct {
	ID           string     `dynamodbav:"id" json:"id"`
	UserID       string     `dynamodbav:"user_id" json:"user_id"`
	Content      string     `dynamodbav:"content" json:"content"`
	MediaRef     string     `dynamodbav:"media_ref,omitempty" json:"media_ref,omitempty"`
	ScheduledFor *time.Time `dynamodbav:"scheduled_for,omitempty" json:"scheduled_for,omitempty"`
	Status       string     `dynamodbav:"status" json:"status"`
	ErrorMessage string     `dynamodbav:"error_message,omitempty" json:"error_message,omitempty"`
	CreatedAt    time.Time  `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `dynamodbav:"updated_at" json:"updated_at"`
}

const (
	PostStatusDraft     = "DRAFT"
	PostStatusScheduled = "SCHEDULED"
	PostStatusPublished = "PUBLISHED"
	PostStatusFailed    = "FAILED"
)

// Terminal reports whether the post has reached a state the publish
// path will never transition out of.
func (p *Post) Terminal() bool {
	return p.Status == PostStatusPublished || p.Status == PostStatusFailed
}
