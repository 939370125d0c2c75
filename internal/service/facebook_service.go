package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "autosocial/configs"
	"autosocial/internal/models"
	"autosocial/internal/repository"
	"autosocial/internal/transfer"
)

// FacebookService publishes scheduled posts to the Graph API and owns
// the resulting status transitions. Provider failure is a terminal
// FAILED outcome with the cause recorded, never an error bubbling up;
// only a timeout is additionally surfaced so the dispatch trigger can
// decide what to do with it.
type FacebookService interface {
	PublishPost(ctx context.Context, post *models.Post, accessToken string) (*models.Post, error)
}

type facebookService struct {
	cfg     config.Config
	pr      repository.PostRepository
	media   MediaService
	client  *http.Client
	baseURL string
	now     func() time.Time
}

func NewFacebookService(cfg config.Config, pr repository.PostRepository, media MediaService) FacebookService {
	return &facebookService{
		cfg:     cfg,
		pr:      pr,
		media:   media,
		client:  &http.Client{Timeout: 2 * time.Minute},
		baseURL: cfg.GraphBaseURL,
		now:     time.Now,
	}
}

func (s *facebookService) PublishPost(ctx context.Context, post *models.Post, accessToken string) (*models.Post, error) {
	if post == nil {
		return nil, models.NewValidationError("post is nil")
	}
	if post.Status != models.PostStatusScheduled {
		return nil, models.NewValidationError("post %s is not scheduled (status %s)", post.ID, post.Status)
	}

	result, pubErr := s.callPublish(ctx, post, accessToken)
	switch {
	case pubErr == nil:
		if err := s.markOutcome(ctx, post, models.PostStatusPublished, ""); err != nil {
			return nil, err
		}
		slog.Info("published post " + post.ID + " as " + result.ID)
		return post, nil

	case errors.Is(pubErr, models.ErrUpstreamTimeout):
		// the call was issued; record the single terminal transition
		// and surface the timeout to the dispatch trigger
		if err := s.markOutcome(ctx, post, models.PostStatusFailed, pubErr.Error()); err != nil {
			return nil, err
		}
		return post, pubErr

	default:
		slog.Info(pubErr.Error())
		if err := s.markOutcome(ctx, post, models.PostStatusFailed, pubErr.Error()); err != nil {
			return nil, err
		}
		return post, nil
	}
}

func (s *facebookService) callPublish(ctx context.Context, post *models.Post, accessToken string) (*transfer.GraphPublishResult, error) {
	endpoint := fmt.Sprintf("%s/%s/feed", s.baseURL, s.cfg.FacebookPageID)
	form := url.Values{}
	form.Set("access_token", accessToken)

	if post.MediaRef != "" {
		endpoint = fmt.Sprintf("%s/%s/photos", s.baseURL, s.cfg.FacebookPageID)
		form.Set("url", s.media.PublicURL(post.MediaRef))
		form.Set("caption", post.Content)
	} else {
		form.Set("message", post.Content)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: publish: %v", models.ErrUpstreamTimeout, err)
		}
		return nil, fmt.Errorf("publish request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var graphErr transfer.GraphErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&graphErr); decodeErr == nil && graphErr.Error.Message != "" {
			return nil, fmt.Errorf("provider error: %s (code %d)", graphErr.Error.Message, graphErr.Error.Code)
		}
		return nil, fmt.Errorf("provider error: unexpected status %d", resp.StatusCode)
	}

	var result transfer.GraphPublishResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("error parsing publish response: %v", err)
	}
	if result.ID == "" && result.PostID == "" {
		return nil, errors.New("no post id returned from provider")
	}

	return &result, nil
}

func (s *facebookService) markOutcome(ctx context.Context, post *models.Post, status, cause string) error {
	err := s.pr.UpdateStatus(ctx, post.ID, models.PostStatusScheduled, status, cause)
	if err != nil {
		if errors.Is(err, models.ErrConditionFailed) {
			// another worker already recorded an outcome for this post
			slog.Info("publish outcome already recorded for post " + post.ID)
			if stored, gerr := s.pr.GetByID(ctx, post.ID); gerr == nil && stored != nil {
				*post = *stored
			}
			return nil
		}
		return fmt.Errorf("%w: %v", models.ErrStoreWrite, err)
	}

	post.Status = status
	post.ErrorMessage = cause
	post.UpdatedAt = s.now().UTC()
	return nil
}
