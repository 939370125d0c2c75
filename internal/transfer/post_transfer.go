package transfer

type PostCreation struct {
	Content      string `json:"content"`
	MediaRef     string `json:"media_ref"`
	ScheduledFor string `json:"scheduled_for"`
}

// PostUpdate carries a partial update: nil fields are left untouched.
type PostUpdate struct {
	Content      *string `json:"content"`
	MediaRef     *string `json:"media_ref"`
	ScheduledFor *string `json:"scheduled_for"`
	Status       *string `json:"status"`
}
