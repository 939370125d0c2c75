package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"autosocial/internal/queue"
	"autosocial/internal/repository"
)

// DispatchJob is the periodic trigger: each tick it evaluates every
// enabled schedule's cron expression over the window since the previous
// tick and nominates the owner's due scheduled posts for publishing.
type DispatchJob struct {
	sr     repository.ScheduleRepository
	pr     repository.PostRepository
	client queue.Enqueuer
	now    func() time.Time

	mu       sync.Mutex
	lastTick time.Time
}

func NewDispatchJob(sr repository.ScheduleRepository, pr repository.PostRepository, client queue.Enqueuer) *DispatchJob {
	return &DispatchJob{
		sr:     sr,
		pr:     pr,
		client: client,
		now:    time.Now,
	}
}

func (j *DispatchJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	j.mu.Lock()
	now := j.now().UTC().Truncate(time.Second)
	prev := j.lastTick
	if prev.IsZero() {
		prev = now.Add(-time.Minute)
	}
	j.lastTick = now
	j.mu.Unlock()

	schedules, err := j.sr.ListEnabled(ctx)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	for _, schedule := range schedules {
		spec, err := cron.ParseStandard(schedule.CronExpression)
		if err != nil {
			// shape is validated at write time; ranges are not
			slog.Info("skipping schedule " + schedule.ID + ": " + err.Error())
			continue
		}

		if spec.Next(prev).After(now) {
			continue
		}

		posts, err := j.pr.ListDueByUserID(ctx, schedule.UserID, now)
		if err != nil {
			slog.Info(err.Error())
			continue
		}

		for _, post := range posts {
			payload := queue.PublishPostPayload{PostID: post.ID}
			if err := queue.EnqueuePost(j.client, payload, 0); err != nil {
				slog.Info("error enqueueing post " + post.ID + ": " + err.Error())
			}
		}
	}
}
