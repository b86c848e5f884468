package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"schedule-manager/internal/model"
	"schedule-manager/internal/repository"
)

// ErrValidation is wrapped by every rejected-input error.
var ErrValidation = errors.New("validation failed")

// ScheduleInput carries the mutable fields of a schedule for create/update.
type ScheduleInput struct {
	Title                   string
	StartAt                 time.Time
	EndAt                   time.Time
	Category                string
	Location                string
	Description             string
	NotificationMinutes     *int
	TaskNotificationMinutes *int
}

// ScheduleService is the operation surface the shell talks to: input
// validation in front, lock-aware repositories behind.
type ScheduleService struct {
	scheduleRepo *repository.ScheduleRepository
	taskRepo     *repository.TaskRepository
}

func NewScheduleService(scheduleRepo *repository.ScheduleRepository, taskRepo *repository.TaskRepository) *ScheduleService {
	return &ScheduleService{scheduleRepo: scheduleRepo, taskRepo: taskRepo}
}

func validateInput(input ScheduleInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if input.StartAt.IsZero() {
		return fmt.Errorf("%w: start time is required", ErrValidation)
	}
	if input.EndAt.IsZero() {
		return fmt.Errorf("%w: end time is required", ErrValidation)
	}
	if !input.EndAt.After(input.StartAt) {
		return fmt.Errorf("%w: end time must be after start time", ErrValidation)
	}
	if input.NotificationMinutes != nil && *input.NotificationMinutes < 0 {
		return fmt.Errorf("%w: notification minutes must not be negative", ErrValidation)
	}
	if input.TaskNotificationMinutes != nil && *input.TaskNotificationMinutes <= 0 {
		return fmt.Errorf("%w: task notification minutes must be positive", ErrValidation)
	}
	return nil
}

func (s *ScheduleService) CreateSchedule(ctx context.Context, input ScheduleInput) (*model.Schedule, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	schedule := model.Schedule{
		Title:                   strings.TrimSpace(input.Title),
		StartAt:                 input.StartAt,
		EndAt:                   input.EndAt,
		Category:                input.Category,
		Location:                input.Location,
		Description:             input.Description,
		NotificationMinutes:     input.NotificationMinutes,
		TaskNotificationMinutes: input.TaskNotificationMinutes,
	}
	if err := s.scheduleRepo.Create(ctx, &schedule); err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (s *ScheduleService) UpdateSchedule(ctx context.Context, id uint, input ScheduleInput) error {
	if err := validateInput(input); err != nil {
		return err
	}
	schedule := model.Schedule{
		ID:                      id,
		Title:                   strings.TrimSpace(input.Title),
		StartAt:                 input.StartAt,
		EndAt:                   input.EndAt,
		Category:                input.Category,
		Location:                input.Location,
		Description:             input.Description,
		NotificationMinutes:     input.NotificationMinutes,
		TaskNotificationMinutes: input.TaskNotificationMinutes,
	}
	return s.scheduleRepo.Update(ctx, &schedule)
}

func (s *ScheduleService) GetSchedule(ctx context.Context, id uint) (*model.Schedule, error) {
	return s.scheduleRepo.FindByID(ctx, id)
}

// ToggleLock flips the lock flag and returns the new state.
func (s *ScheduleService) ToggleLock(ctx context.Context, id uint) (bool, error) {
	return s.scheduleRepo.ToggleLock(ctx, id)
}

func (s *ScheduleService) SetCompletion(ctx context.Context, id uint, completed bool) error {
	return s.scheduleRepo.SetCompletion(ctx, id, completed)
}

func (s *ScheduleService) DeleteSchedule(ctx context.Context, id uint) error {
	return s.scheduleRepo.Delete(ctx, id)
}

// ReplaceTasks swaps the whole checklist of a schedule, keeping input order
// and dropping blank lines.
func (s *ScheduleService) ReplaceTasks(ctx context.Context, scheduleID uint, descriptions []string) error {
	return s.taskRepo.ReplaceAll(ctx, scheduleID, descriptions)
}

// SetTaskCompletion flips one task and applies the sentinel convention:
// checking or unchecking the "schedule end" task drives the owning
// schedule's completion flag.
func (s *ScheduleService) SetTaskCompletion(ctx context.Context, taskID uint, completed bool) (*model.Task, error) {
	task, err := s.taskRepo.SetCompletion(ctx, taskID, completed, time.Now())
	if err != nil {
		return nil, err
	}
	if task.Description == model.SentinelEnd {
		if err := s.scheduleRepo.SetCompletion(ctx, task.ScheduleID, completed); err != nil {
			return nil, err
		}
	}
	return task, nil
}

func (s *ScheduleService) ListAll(ctx context.Context) ([]model.Schedule, error) {
	return s.scheduleRepo.ListAll(ctx)
}

func (s *ScheduleService) ListUpcoming(ctx context.Context, now time.Time) ([]model.Schedule, error) {
	return s.scheduleRepo.ListUpcoming(ctx, now)
}

func (s *ScheduleService) ListPast(ctx context.Context, now time.Time) ([]model.Schedule, error) {
	return s.scheduleRepo.ListPast(ctx, now)
}

func (s *ScheduleService) ListTasks(ctx context.Context, scheduleID uint) ([]model.Task, error) {
	return s.taskRepo.ListBySchedule(ctx, scheduleID)
}
