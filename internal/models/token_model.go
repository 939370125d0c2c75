package models

import "time"

// CredentialChain is the single stored record holding the delegated
// authorization tokens for the connected platform account. Token values
// are encrypted before they reach the repository.
type CredentialChain struct {
	ID              string    `dynamodbav:"id" json:"id"`
	ShortLivedToken string    `dynamodbav:"short_lived_token" json:"-"`
	ShortObtainedAt time.Time `dynamodbav:"short_obtained_at" json:"short_obtained_at"`
	LongLivedToken  string    `dynamodbav:"long_lived_token" json:"-"`
	LongExpiresIn   int64     `dynamodbav:"long_expires_in" json:"long_expires_in"`
	LongObtainedAt  time.Time `dynamodbav:"long_obtained_at" json:"long_obtained_at"`
	UpdatedAt       time.Time `dynamodbav:"updated_at" json:"updated_at"`
}

// LongLivedValid reports whether the long-lived token is still inside
// its expiry window at the given instant.
func (c *CredentialChain) LongLivedValid(now time.Time) bool {
	if c.LongLivedToken == "" || c.LongExpiresIn <= 0 {
		return false
	}
	return now.Before(c.LongObtainedAt.Add(time.Duration(c.LongExpiresIn) * time.Second))
}
