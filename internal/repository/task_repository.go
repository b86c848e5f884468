package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"schedule-manager/internal/model"
)

// TaskRepository handles CRUD for checklist tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) conn(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, ErrConnectionUnavailable
	}
	return r.db.WithContext(ctx), nil
}

// ReplaceAll swaps the whole task list of a schedule: existing rows are
// deleted and the given descriptions inserted in order, each uncompleted.
// Blank or whitespace-only descriptions are silently dropped. The swap is a
// single transaction, so a failure leaves the previous list intact.
func (r *TaskRepository) ReplaceAll(ctx context.Context, scheduleID uint, descriptions []string) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		schedule, err := findSchedule(tx, scheduleID)
		if err != nil {
			return err
		}
		if schedule.IsLocked {
			return ErrLocked
		}
		if err := tx.Where("schedule_id = ?", scheduleID).Delete(&model.Task{}).Error; err != nil {
			return fmt.Errorf("clear tasks: %w", err)
		}
		for _, desc := range descriptions {
			desc = strings.TrimSpace(desc)
			if desc == "" {
				continue
			}
			task := model.Task{ScheduleID: scheduleID, Description: desc}
			if err := tx.Create(&task).Error; err != nil {
				return fmt.Errorf("insert task: %w", err)
			}
		}
		return nil
	})
}

// SetCompletion flips a task's completion flag, stamping CompletedAt when
// completing and clearing it when uncompleting. Refused while the owning
// schedule is locked.
func (r *TaskRepository) SetCompletion(ctx context.Context, taskID uint, completed bool, completedAt time.Time) (*model.Task, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	var task *model.Task
	err = db.Transaction(func(tx *gorm.DB) error {
		found, err := findTask(tx, taskID)
		if err != nil {
			return err
		}
		schedule, err := findSchedule(tx, found.ScheduleID)
		if err != nil {
			return err
		}
		if schedule.IsLocked {
			return ErrLocked
		}
		found.IsCompleted = completed
		if completed {
			found.CompletedAt = &completedAt
		} else {
			found.CompletedAt = nil
		}
		updates := map[string]interface{}{
			"is_completed": found.IsCompleted,
			"completed_at": found.CompletedAt,
		}
		if err := tx.Model(&model.Task{}).Where("id = ?", taskID).Updates(updates).Error; err != nil {
			return fmt.Errorf("set task completion: %w", err)
		}
		task = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, taskID uint) (*model.Task, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	return findTask(db, taskID)
}

// ListBySchedule returns the tasks of a schedule in insertion order.
func (r *TaskRepository) ListBySchedule(ctx context.Context, scheduleID uint) ([]model.Task, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	var tasks []model.Task
	if err := db.Where("schedule_id = ?", scheduleID).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func findTask(tx *gorm.DB, id uint) (*model.Task, error) {
	var task model.Task
	if err := tx.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &task, nil
}
