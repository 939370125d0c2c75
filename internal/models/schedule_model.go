package models

import "time"

type Schedule struct {
	ID             string    `dynamodbav:"id" json:"id"`
	UserID         string    `dynamodbav:"user_id" json:"user_id"`
	Name           string    `dynamodbav:"name" json:"name"`
	CronExpression string    `dynamodbav:"cron_expression" json:"cron_expression"`
	Enabled        bool      `dynamodbav:"enabled" json:"enabled"`
	CreatedAt      time.Time `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt      time.Time `dynamodbav:"updated_at" json:"updated_at"`
}
