package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"schedule-manager/internal/model"
)

// ScheduleRepository handles CRUD for schedules with lock enforcement.
//
// Mutations that are gated by the lock flag re-read the row inside the same
// transaction, so a concurrent lock toggle can never race a half-applied
// write.
type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) conn(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, ErrConnectionUnavailable
	}
	return r.db.WithContext(ctx), nil
}

func (r *ScheduleRepository) Create(ctx context.Context, schedule *model.Schedule) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}
	schedule.IsLocked = false
	schedule.IsCompleted = false
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = time.Now()
	}
	if err := db.Create(schedule).Error; err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

func (r *ScheduleRepository) FindByID(ctx context.Context, id uint) (*model.Schedule, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	return findSchedule(db, id)
}

// Update overwrites every mutable field of the schedule. The lock flag,
// completion flag and creation timestamp are preserved.
func (r *ScheduleRepository) Update(ctx context.Context, schedule *model.Schedule) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		current, err := findSchedule(tx, schedule.ID)
		if err != nil {
			return err
		}
		if current.IsLocked {
			return ErrLocked
		}
		updates := map[string]interface{}{
			"title":                     schedule.Title,
			"start_at":                  schedule.StartAt,
			"end_at":                    schedule.EndAt,
			"category":                  schedule.Category,
			"location":                  schedule.Location,
			"description":               schedule.Description,
			"notification_minutes":      schedule.NotificationMinutes,
			"task_notification_minutes": schedule.TaskNotificationMinutes,
		}
		if err := tx.Model(&model.Schedule{}).Where("id = ?", schedule.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update schedule: %w", err)
		}
		return nil
	})
}

// ToggleLock flips the lock flag and returns the new state. This is the one
// mutation allowed regardless of the current lock state.
func (r *ScheduleRepository) ToggleLock(ctx context.Context, id uint) (bool, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return false, err
	}
	var locked bool
	err = db.Transaction(func(tx *gorm.DB) error {
		current, err := findSchedule(tx, id)
		if err != nil {
			return err
		}
		locked = !current.IsLocked
		if err := tx.Model(&model.Schedule{}).Where("id = ?", id).
			Update("is_locked", locked).Error; err != nil {
			return fmt.Errorf("toggle lock: %w", err)
		}
		return nil
	})
	return locked, err
}

func (r *ScheduleRepository) SetCompletion(ctx context.Context, id uint, completed bool) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		current, err := findSchedule(tx, id)
		if err != nil {
			return err
		}
		if current.IsLocked {
			return ErrLocked
		}
		if err := tx.Model(&model.Schedule{}).Where("id = ?", id).
			Update("is_completed", completed).Error; err != nil {
			return fmt.Errorf("set completion: %w", err)
		}
		return nil
	})
}

// Delete removes the schedule and all of its tasks in one transaction.
func (r *ScheduleRepository) Delete(ctx context.Context, id uint) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		current, err := findSchedule(tx, id)
		if err != nil {
			return err
		}
		if current.IsLocked {
			return ErrLocked
		}
		if err := tx.Where("schedule_id = ?", id).Delete(&model.Task{}).Error; err != nil {
			return fmt.Errorf("delete tasks: %w", err)
		}
		if err := tx.Delete(&model.Schedule{}, id).Error; err != nil {
			return fmt.Errorf("delete schedule: %w", err)
		}
		return nil
	})
}

func (r *ScheduleRepository) ListAll(ctx context.Context) ([]model.Schedule, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	var schedules []model.Schedule
	if err := db.Order("start_at ASC").Find(&schedules).Error; err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return schedules, nil
}

// ListUpcoming returns schedules that have not ended yet (end >= now),
// ascending by start.
func (r *ScheduleRepository) ListUpcoming(ctx context.Context, now time.Time) ([]model.Schedule, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	var schedules []model.Schedule
	if err := db.Where("end_at >= ?", now).Order("start_at ASC").Find(&schedules).Error; err != nil {
		return nil, fmt.Errorf("list upcoming: %w", err)
	}
	return schedules, nil
}

// ListPast returns schedules that already ended (end < now), descending by
// start. Together with ListUpcoming it partitions the store for a fixed now.
func (r *ScheduleRepository) ListPast(ctx context.Context, now time.Time) ([]model.Schedule, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	var schedules []model.Schedule
	if err := db.Where("end_at < ?", now).Order("start_at DESC").Find(&schedules).Error; err != nil {
		return nil, fmt.Errorf("list past: %w", err)
	}
	return schedules, nil
}

func findSchedule(tx *gorm.DB, id uint) (*model.Schedule, error) {
	var schedule model.Schedule
	if err := tx.First(&schedule, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find schedule: %w", err)
	}
	return &schedule, nil
}
