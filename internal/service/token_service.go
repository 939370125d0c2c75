package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	config "autosocial/configs"
	"autosocial/internal/models"
	"autosocial/internal/repository"
	"autosocial/internal/transfer"
	"autosocial/pkg/utils"
)

// ShortLivedTokenSource supplies the initial short-lived user token.
// Acquisition is out of band: the default deployment completes it
// through the connect flow, tests inject a fake.
type ShortLivedTokenSource interface {
	Acquire(ctx context.Context) (string, error)
}

// NoShortLivedSource reports a missing credential on every Acquire; it
// is used when bootstrap can only happen through the connect flow.
type NoShortLivedSource struct{}

func (NoShortLivedSource) Acquire(ctx context.Context) (string, error) {
	return "", fmt.Errorf("%w: no short-lived token available, complete the connect flow first", models.ErrCredentialExchange)
}

type TokenService interface {
	EnsureShortLivedToken(ctx context.Context) error
	SaveShortLivedToken(ctx context.Context, token string) error
	RenewLongLivedToken(ctx context.Context) (string, error)
	GetValidLongLivedToken(ctx context.Context) (string, error)
	RenewIfExpiringWithin(ctx context.Context, window time.Duration) error
}

type tokenService struct {
	cfg     config.Config
	tr      repository.TokenRepository
	source  ShortLivedTokenSource
	client  *http.Client
	baseURL string
	now     func() time.Time

	mu     sync.Mutex
	cached *models.CredentialChain // stored (encrypted) form
	loaded bool
}

func NewTokenService(cfg config.Config, tr repository.TokenRepository, source ShortLivedTokenSource) TokenService {
	return &tokenService{
		cfg:     cfg,
		tr:      tr,
		source:  source,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: cfg.GraphBaseURL,
		now:     time.Now,
	}
}

func (s *tokenService) EnsureShortLivedToken(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureShortLocked(ctx)
}

func (s *tokenService) SaveShortLivedToken(ctx context.Context, token string) error {
	if token == "" {
		return models.NewValidationError("short-lived token is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveShortLocked(ctx, token)
}

func (s *tokenService) RenewLongLivedToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renewLocked(ctx)
}

// GetValidLongLivedToken is the only read path for the long-lived
/// token. An expired token is never handed out: the renewal path runs
// first and only a durably recorded token is returned.
func (s *tokenService) GetValidLongLivedToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chain, err := s.loadLocked(ctx)
	if err != nil {
		return "", err
	}
	if chain != nil && chain.LongLivedValid(s.now()) {
		return s.decrypt(chain.LongLivedToken)
	}
	return s.renewLocked(ctx)
}

func (s *tokenService) RenewIfExpiringWithin(ctx context.Context, window time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chain, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}
	if chain == nil || chain.ShortLivedToken == "" {
		// nothing connected yet
		return nil
	}
	if chain.LongLivedValid(s.now().Add(window)) {
		return nil
	}

	_, err = s.renewLocked(ctx)
	return err
}

func (s *tokenService) ensureShortLocked(ctx context.Context) error {
	chain, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}
	if chain != nil && chain.ShortLivedToken != "" {
		return nil
	}

	value, err := s.source.Acquire(ctx)
	if err != nil {
		if errors.Is(err, models.ErrCredentialExchange) {
			return err
		}
		return fmt.Errorf("%w: %v", models.ErrCredentialExchange, err)
	}

	return s.saveShortLocked(ctx, value)
}

func (s *tokenService) saveShortLocked(ctx context.Context, value string) error {
	chain, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}

	encrypted, err := s.encrypt(value)
	if err != nil {
		return err
	}

	next := &models.CredentialChain{
		ShortLivedToken: encrypted,
		ShortObtainedAt: s.now().UTC(),
		UpdatedAt:       s.now().UTC(),
	}
	prev := ""
	if chain != nil {
		next.LongLivedToken = chain.LongLivedToken
		next.LongExpiresIn = chain.LongExpiresIn
		next.LongObtainedAt = chain.LongObtainedAt
		prev = chain.LongLivedToken
	}

	if err := s.tr.Put(ctx, next, prev); err != nil {
		s.invalidateLocked()
		if errors.Is(err, models.ErrConditionFailed) {
			refreshed, rerr := s.loadLocked(ctx)
			if rerr != nil {
				return rerr
			}
			if refreshed != nil && refreshed.ShortLivedToken != "" {
				return nil
			}
		}
		return fmt.Errorf("%w: %v", models.ErrStoreWrite, err)
	}

	s.cached = next
	s.loaded = true
	return nil
}

// renewLocked is the single canonical renewal path: nothing else
// writes the long-lived token.
func (s *tokenService) renewLocked(ctx context.Context) (string, error) {
	chain, err := s.loadLocked(ctx)
	if err != nil {
		return "", err
	}

	if chain == nil || chain.ShortLivedToken == "" {
		if err := s.ensureShortLocked(ctx); err != nil {
			return "", err
		}
		chain = s.cached
	}

	short, err := s.decrypt(chain.ShortLivedToken)
	if err != nil {
		return "", err
	}

	token, err := s.exchange(ctx, short)
	if err != nil && errors.Is(err, models.ErrCredentialExchange) {
		// the provider rejected the stored short-lived token;
		// bootstrap and retry exactly once
		s.invalidateShortLocked()
		if bErr := s.ensureShortLocked(ctx); bErr != nil {
			return "", bErr
		}
		short, err = s.decrypt(s.cached.ShortLivedToken)
		if err != nil {
			return "", err
		}
		token, err = s.exchange(ctx, short)
	}
	if err != nil {
		return "", err
	}

	return s.storeLongLocked(ctx, token)
}

func (s *tokenService) exchange(ctx context.Context, shortLivedToken string) (*transfer.GraphToken, error) {
	params := url.Values{}
	params.Set("grant_type", "fb_exchange_token")
	params.Set("client_id", s.cfg.FacebookAppID)
	params.Set("client_secret", s.cfg.FacebookAppSecret)
	params.Set("fb_exchange_token", shortLivedToken)

	reqURL := fmt.Sprintf("%s/oauth/access_token?%s", s.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: token exchange: %v", models.ErrUpstreamTimeout, err)
		}
		slog.Info(err.Error())
		return nil, fmt.Errorf("%w: %v", models.ErrCredentialExchange, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var graphErr transfer.GraphErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&graphErr); decodeErr == nil && graphErr.Error.Message != "" {
			slog.Info(graphErr.Error.Message)
			return nil, fmt.Errorf("%w: %s", models.ErrCredentialExchange, graphErr.Error.Message)
		}
		return nil, fmt.Errorf("%w: unexpected status %d", models.ErrCredentialExchange, resp.StatusCode)
	}

	var token transfer.GraphToken
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		slog.Info(err.Error())
		return nil, models.NewValidationError("malformed token response: %v", err)
	}
	if token.AccessToken == "" || token.ExpiresIn <= 0 {
		return nil, models.NewValidationError("token response missing access_token or expires_in")
	}

	return &token, nil
}

func (s *tokenService) storeLongLocked(ctx context.Context, token *transfer.GraphToken) (string, error) {
	chain := s.cached

	encrypted, err := s.encrypt(token.AccessToken)
	if err != nil {
		return "", err
	}

	next := &models.CredentialChain{
		ShortLivedToken: chain.ShortLivedToken,
		ShortObtainedAt: chain.ShortObtainedAt,
		LongLivedToken:  encrypted,
		LongExpiresIn:   token.ExpiresIn,
		LongObtainedAt:  s.now().UTC(),
		UpdatedAt:       s.now().UTC(),
	}

	if err := s.tr.Put(ctx, next, chain.LongLivedToken); err != nil {
		s.invalidateLocked()
		if errors.Is(err, models.ErrConditionFailed) {
			// a concurrent renewal won the conditional write; use its token
			refreshed, rerr := s.loadLocked(ctx)
			if rerr != nil {
				return "", rerr
			}
			if refreshed != nil && refreshed.LongLivedValid(s.now()) {
				return s.decrypt(refreshed.LongLivedToken)
			}
		}
		return "", fmt.Errorf("%w: %v", models.ErrStoreWrite, err)
	}

	s.cached = next
	s.loaded = true
	return token.AccessToken, nil
}

func (s *tokenService) loadLocked(ctx context.Context) (*models.CredentialChain, error) {
	if s.loaded {
		return s.cached, nil
	}
	chain, err := s.tr.Get(ctx)
	if err != nil {
		return nil, err
	}
	s.cached = chain
	s.loaded = true
	return chain, nil
}

func (s *tokenService) invalidateLocked() {
	s.cached = nil
	s.loaded = false
}

// invalidateShortLocked drops the cached short-lived token so the next
// ensure call acquires a fresh one.
func (s *tokenService) invalidateShortLocked() {
	if s.cached != nil {
		s.cached.ShortLivedToken = ""
	}
}

func (s *tokenService) encrypt(value string) (string, error) {
	return utils.Encrypt([]byte(value), []byte(s.cfg.SecretKey))
}

func (s *tokenService) decrypt(value string) (string, error) {
	return utils.Decrypt(value, []byte(s.cfg.SecretKey))
}
