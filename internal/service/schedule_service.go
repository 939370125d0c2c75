package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"autosocial/internal/models"
	"autosocial/internal/repository"
	"autosocial/internal/transfer"
)

type ScheduleService interface {
	Create(ctx context.Context, userID string, sc *transfer.ScheduleCreation) (*models.Schedule, error)
	Get(ctx context.Context, userID, scheduleID string) (*models.Schedule, error)
	List(ctx context.Context, userID string) ([]*models.Schedule, error)
	Update(ctx context.Context, userID, scheduleID string, su *transfer.ScheduleUpdate) (*models.Schedule, error)
	Remove(ctx context.Context, userID, scheduleID string) error
}

type scheduleService struct {
	sr  repository.ScheduleRepository
	now func() time.Time
}

func NewScheduleService(sr repository.ScheduleRepository) ScheduleService {
	return &scheduleService{
		sr:  sr,
		now: time.Now,
	}
}

func (s *scheduleService) Create(ctx context.Context, userID string, sc *transfer.ScheduleCreation) (*models.Schedule, error) {
	if userID == "" {
		return nil, models.ErrAccessDenied
	}
	if sc == nil {
		return nil, models.NewValidationError("schedule data is missing")
	}
	if sc.Name == "" {
		return nil, models.NewValidationError("name is required")
	}
	if sc.CronExpression == "" {
		return nil, models.NewValidationError("cron expression is required")
	}
	if err := validateCronExpression(sc.CronExpression); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	enabled := true
	if sc.Enabled != nil {
		enabled = *sc.Enabled
	}

	now := s.now().UTC()
	schedule := &models.Schedule{
		ID:             id.String(),
		UserID:         userID,
		Name:           sc.Name,
		CronExpression: sc.CronExpression,
		Enabled:        enabled,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.sr.Create(ctx, schedule); err != nil {
		return nil, fmt.Errorf("%w: creating schedule: %v", models.ErrStoreWrite, err)
	}

	return schedule, nil
}

func (s *scheduleService) Get(ctx context.Context, userID, scheduleID string) (*models.Schedule, error) {
	return s.getOwned(ctx, userID, scheduleID)
}

func (s *scheduleService) List(ctx context.Context, userID string) ([]*models.Schedule, error) {
	if userID == "" {
		return nil, models.ErrAccessDenied
	}
	schedules, err := s.sr.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing schedules: %w", err)
	}
	return schedules, nil
}

func (s *scheduleService) Update(ctx context.Context, userID, scheduleID string, su *transfer.ScheduleUpdate) (*models.Schedule, error) {
	if _, err := s.getOwned(ctx, userID, scheduleID); err != nil {
		return nil, err
	}
	if su == nil {
		return nil, models.NewValidationError("update data is missing")
	}

	fields := make(map[string]any)

	if su.Name != nil {
		if *su.Name == "" {
			return nil, models.NewValidationError("name is required")
		}
		fields["name"] = *su.Name
	}
	if su.CronExpression != nil {
		if err := validateCronExpression(*su.CronExpression); err != nil {
			return nil, err
		}
		fields["cron_expression"] = *su.CronExpression
	}
	if su.Enabled != nil {
		fields["enabled"] = *su.Enabled
	}

	fields["updated_at"] = s.now().UTC()

	return s.sr.Update(ctx, scheduleID, fields)
}

func (s *scheduleService) Remove(ctx context.Context, userID, scheduleID string) error {
	if _, err := s.getOwned(ctx, userID, scheduleID); err != nil {
		return err
	}

	if err := s.sr.Remove(ctx, scheduleID); err != nil {
		return fmt.Errorf("%w: removing schedule: %v", models.ErrStoreWrite, err)
	}
	return nil
}

func (s *scheduleService) getOwned(ctx context.Context, userID, scheduleID string) (*models.Schedule, error) {
	if userID == "" {
		return nil, models.ErrAccessDenied
	}
	if scheduleID == "" {
		return nil, models.NewValidationError("schedule id is required")
	}

	schedule, err := s.sr.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("error getting schedule: %w", err)
	}
	if schedule == nil {
		return nil, models.ErrNotFound
	}
	if schedule.UserID != userID {
		slog.Info("schedule " + scheduleID + " requested by non-owner")
		return nil, models.ErrAccessDenied
	}
	return schedule, nil
}

// validateCronExpression checks shape only: exactly 5 whitespace
// separated fields. Field ranges are the cron evaluator's concern.
func validateCronExpression(expr string) error {
	if len(strings.Fields(expr)) != 5 {
		return models.NewValidationError("invalid cron expression format")
	}
	return nil
}
