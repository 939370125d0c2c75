package models

import "time"

type PublishHistory struct {
	ID           string    `dynamodbav:"id" json:"id"`
	UserID       string    `dynamodbav:"user_id" json:"user_id"`
	PostID       string    `dynamodbav:"post_id" json:"post_id"`
	ErrorMessage string    `dynamodbav:"error_message,omitempty" json:"error_message,omitempty"`
	CreatedAt    time.Time `dynamodbav:"created_at" json:"created_at"`
}
