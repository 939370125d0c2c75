package service

import (
	"context"
	"errors"
	"sync"
	"time"

	config "autosocial/configs"
	"autosocial/internal/models"
)

// fakePostRepo is an in-memory PostRepository with the same conditional
// semantics as the real store.
type fakePostRepo struct {
	mu    sync.Mutex
	posts map[string]*models.Post

	createErr error
	updateErr error
	removeErr error
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[string]*models.Post)}
}

func (r *fakePostRepo) Create(ctx context.Context, post *models.Post) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *post
	r.posts[post.ID] = &cp
	return nil
}

func (r *fakePostRepo) GetByID(ctx context.Context, id string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	cp := *post
	return &cp, nil
}

func (r *fakePostRepo) ListByUserID(ctx context.Context, userID string) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Post
	for _, post := range r.posts {
		if post.UserID == userID {
			cp := *post
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakePostRepo) ListDueByUserID(ctx context.Context, userID string, due time.Time) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Post
	for _, post := range r.posts {
		if post.UserID != userID || post.Status != models.PostStatusScheduled {
			continue
		}
		if post.ScheduledFor == nil || post.ScheduledFor.After(due) {
			continue
		}
		cp := *post
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakePostRepo) Update(ctx context.Context, id string, fields map[string]any) (*models.Post, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	for name, value := range fields {
		switch name {
		case "content":
			post.Content = value.(string)
		case "media_ref":
			post.MediaRef = value.(string)
		case "scheduled_for":
			t := value.(time.Time)
			post.ScheduledFor = &t
		case "status":
			post.Status = value.(string)
		case "error_message":
			post.ErrorMessage = value.(string)
		case "updated_at":
			post.UpdatedAt = value.(time.Time)
		}
	}
	cp := *post
	return &cp, nil
}

func (r *fakePostRepo) UpdateStatus(ctx context.Context, id, fromStatus, toStatus, errorMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return models.ErrNotFound
	}
	if post.Status != fromStatus {
		return models.ErrConditionFailed
	}
	post.Status = toStatus
	post.ErrorMessage = errorMessage
	post.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *fakePostRepo) Remove(ctx context.Context, id string) error {
	if r.removeErr != nil {
		return r.removeErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.posts, id)
	return nil
}

type fakeScheduleRepo struct {
	mu        sync.Mutex
	schedules map[string]*models.Schedule

	createErr error
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{schedules: make(map[string]*models.Schedule)}
}

func (r *fakeScheduleRepo) Create(ctx context.Context, schedule *models.Schedule) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *schedule
	r.schedules[schedule.ID] = &cp
	return nil
}

func (r *fakeScheduleRepo) GetByID(ctx context.Context, id string) (*models.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	schedule, ok := r.schedules[id]
	if !ok {
		return nil, nil
	}
	cp := *schedule
	return &cp, nil
}

func (r *fakeScheduleRepo) ListByUserID(ctx context.Context, userID string) ([]*models.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Schedule
	for _, schedule := range r.schedules {
		if schedule.UserID == userID {
			cp := *schedule
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) ListEnabled(ctx context.Context) ([]*models.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Schedule
	for _, schedule := range r.schedules {
		if schedule.Enabled {
			cp := *schedule
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) Update(ctx context.Context, id string, fields map[string]any) (*models.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	schedule, ok := r.schedules[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	for name, value := range fields {
		switch name {
		case "name":
			schedule.Name = value.(string)
		case "cron_expression":
			schedule.CronExpression = value.(string)
		case "enabled":
			schedule.Enabled = value.(bool)
		case "updated_at":
			schedule.UpdatedAt = value.(time.Time)
		}
	}
	cp := *schedule
	return &cp, nil
}

func (r *fakeScheduleRepo) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.schedules, id)
	return nil
}

// fakeTokenRepo mirrors the conditional Put of the real store: the
// previous long-lived token value must match what is stored.
type fakeTokenRepo struct {
	mu    sync.Mutex
	chain *models.CredentialChain

	getErr error
	putErr error

	putCalls int
}

func (r *fakeTokenRepo) Get(ctx context.Context) (*models.CredentialChain, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.chain == nil {
		return nil, nil
	}
	cp := *r.chain
	return &cp, nil
}

func (r *fakeTokenRepo) Put(ctx context.Context, chain *models.CredentialChain, previousLongToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.putCalls++
	if r.putErr != nil {
		return r.putErr
	}
	stored := ""
	if r.chain != nil {
		stored = r.chain.LongLivedToken
	}
	if stored != previousLongToken {
		return models.ErrConditionFailed
	}
	cp := *chain
	r.chain = &cp
	return nil
}

type fakeMediaService struct {
	uploadRef string
	deleteErr error

	deleted []string
}

func (m *fakeMediaService) Upload(ctx context.Context, file []byte) (string, error) {
	return m.uploadRef, nil
}

func (m *fakeMediaService) Delete(ctx context.Context, mediaRef string) error {
	m.deleted = append(m.deleted, mediaRef)
	return m.deleteErr
}

func (m *fakeMediaService) PublicURL(mediaRef string) string {
	return "https://media.example.com/" + mediaRef
}

type fakeShortSource struct {
	tokens []string
	err    error

	calls int
}

func (s *fakeShortSource) Acquire(ctx context.Context) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if len(s.tokens) == 0 {
		return "", errors.New("no tokens configured")
	}
	token := s.tokens[0]
	if len(s.tokens) > 1 {
		s.tokens = s.tokens[1:]
	}
	return token, nil
}

func testConfig() config.Config {
	return config.Config{
		FacebookAppID:     "app-id",
		FacebookAppSecret: "app-secret",
		FacebookPageID:    "page-id",
		SecretKey:         "0123456789abcdef0123456789abcdef",
	}
}
