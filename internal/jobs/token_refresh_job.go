package job

import (
	"context"
	"log/slog"
	"time"

	"autosocial/internal/service"
)

// refreshLookahead renews the long-lived token well before its expiry
// window closes so publishes never race the deadline.
const refreshLookahead = 30 * time.Minute

type TokenRefreshJob struct {
	tk service.TokenService
}

func NewTokenRefreshJob(tk service.TokenService) *TokenRefreshJob {
	return &TokenRefreshJob{tk: tk}
}

func (c *TokenRefreshJob) RefreshTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := c.tk.RenewIfExpiringWithin(ctx, refreshLookahead); err != nil {
		slog.Info("Unable to refresh long-lived token: " + err.Error())
	}
}
