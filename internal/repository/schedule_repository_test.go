package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"schedule-manager/internal/model"
	"schedule-manager/internal/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return db
}

func seedSchedule(t *testing.T, repo *repository.ScheduleRepository, title string, start, end time.Time) *model.Schedule {
	t.Helper()
	schedule := &model.Schedule{
		Title:    title,
		StartAt:  start,
		EndAt:    end,
		Category: "Work",
	}
	require.NoError(t, repo.Create(context.Background(), schedule))
	require.NotZero(t, schedule.ID)
	return schedule
}

func lockSchedule(t *testing.T, repo *repository.ScheduleRepository, id uint) {
	t.Helper()
	locked, err := repo.ToggleLock(context.Background(), id)
	require.NoError(t, err)
	require.True(t, locked)
}

func TestScheduleRepository_CreateRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewScheduleRepository(db)
	ctx := context.Background()

	minutes := 15
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.Local)
	schedule := &model.Schedule{
		Title:               "Team meeting",
		StartAt:             start,
		EndAt:               start.Add(time.Hour),
		Category:            "Work",
		Location:            "Room A",
		Description:         "Progress report",
		NotificationMinutes: &minutes,
	}
	require.NoError(t, repo.Create(ctx, schedule))

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	got := all[0]
	assert.Equal(t, schedule.ID, got.ID)
	assert.Equal(t, "Team meeting", got.Title)
	assert.True(t, got.StartAt.Equal(start))
	assert.True(t, got.EndAt.Equal(start.Add(time.Hour)))
	assert.Equal(t, "Work", got.Category)
	assert.Equal(t, "Room A", got.Location)
	assert.Equal(t, "Progress report", got.Description)
	assert.False(t, got.IsLocked)
	assert.False(t, got.IsCompleted)
	require.NotNil(t, got.NotificationMinutes)
	assert.Equal(t, 15, *got.NotificationMinutes)
	assert.Nil(t, got.TaskNotificationMinutes)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestScheduleRepository_CreateForcesDefaults(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewScheduleRepository(db)
	ctx := context.Background()

	now := time.Now()
	schedule := &model.Schedule{
		Title:       "Sneaky",
		StartAt:     now,
		EndAt:       now.Add(time.Hour),
		IsLocked:    true,
		IsCompleted: true,
	}
	require.NoError(t, repo.Create(ctx, schedule))

	got, err := repo.FindByID(ctx, schedule.ID)
	require.NoError(t, err)
	assert.False(t, got.IsLocked)
	assert.False(t, got.IsCompleted)
}

func TestScheduleRepository_UpdatePreservesLockAndCreatedAt(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewScheduleRepository(db)
	ctx := context.Background()

	now := time.Now()
	schedule := seedSchedule(t, repo, "Before", now, now.Add(time.Hour))
	created := schedule.CreatedAt

	minutes := 30
	updated := &model.Schedule{
		ID:                  schedule.ID,
		Title:               "After",
		StartAt:             now.Add(2 * time.Hour),
		EndAt:               now.Add(3 * time.Hour),
		Category:            "Private",
		Location:            "Home",
		NotificationMinutes: &minutes,
	}
	require.NoError(t, repo.Update(ctx, updated))

	got, err := repo.FindByID(ctx, schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", got.Title)
	assert.Equal(t, "Private", got.Category)
	require.NotNil(t, got.NotificationMinutes)
	assert.Equal(t, 30, *got.NotificationMinutes)
	assert.False(t, got.IsLocked)
	assert.WithinDuration(t, created, got.CreatedAt, time.Second)
}

func TestScheduleRepository_UpdateNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewScheduleRepository(db)

	err := repo.Update(context.Background(), &model.Schedule{ID: 42, Title: "ghost"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestScheduleRepository_LockedMutationsRefused(t *testing.T) {
	db := setupTestDB(t)
	scheduleRepo := repository.NewScheduleRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	ctx := context.Background()

	now := time.Now()
	schedule := seedSchedule(t, scheduleRepo, "Frozen", now, now.Add(time.Hour))
	require.NoError(t, taskRepo.ReplaceAll(ctx, schedule.ID, []string{"schedule start", "pack bags", "schedule end"}))
	tasks, err := taskRepo.ListBySchedule(ctx, schedule.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	lockSchedule(t, scheduleRepo, schedule.ID)

	err = scheduleRepo.Update(ctx, &model.Schedule{ID: schedule.ID, Title: "Thawed", StartAt: now, EndAt: now.Add(time.Hour)})
	assert.ErrorIs(t, err, repository.ErrLocked)

	err = scheduleRepo.SetCompletion(ctx, schedule.ID, true)
	assert.ErrorIs(t, err, repository.ErrLocked)

	err = scheduleRepo.Delete(ctx, schedule.ID)
	assert.ErrorIs(t, err, repository.ErrLocked)

	err = taskRepo.ReplaceAll(ctx, schedule.ID, []string{"other"})
	assert.ErrorIs(t, err, repository.ErrLocked)

	_, err = taskRepo.SetCompletion(ctx, tasks[1].ID, true, time.Now())
	assert.ErrorIs(t, err, repository.ErrLocked)

	// Stored state stayed untouched.
	got, err := scheduleRepo.FindByID(ctx, schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, "Frozen", got.Title)
	assert.False(t, got.IsCompleted)
	tasksAfter, err := taskRepo.ListBySchedule(ctx, schedule.ID)
	require.NoError(t, err)
	require.Len(t, tasksAfter, 3)
	assert.False(t, tasksAfter[1].IsCompleted)

	// The one mutation still allowed.
	locked, err := scheduleRepo.ToggleLock(ctx, schedule.ID)
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestScheduleRepository_ToggleLockTwiceRestoresState(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewScheduleRepository(db)
	ctx := context.Background()

	now := time.Now()
	schedule := seedSchedule(t, repo, "Toggle", now, now.Add(time.Hour))

	locked, err := repo.ToggleLock(ctx, schedule.ID)
	require.NoError(t, err)
	assert.True(t, locked)

	locked, err = repo.ToggleLock(ctx, schedule.ID)
	require.NoError(t, err)
	assert.False(t, locked)

	got, err := repo.FindByID(ctx, schedule.ID)
	require.NoError(t, err)
	assert.False(t, got.IsLocked)
}

func TestScheduleRepository_ToggleLockNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewScheduleRepository(db)

	_, err := repo.ToggleLock(context.Background(), 99)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestScheduleRepository_DeleteCascadesToTasks(t *testing.T) {
	db := setupTestDB(t)
	scheduleRepo := repository.NewScheduleRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	ctx := context.Background()

	now := time.Now()
	schedule := seedSchedule(t, scheduleRepo, "Doomed", now, now.Add(time.Hour))
	other := seedSchedule(t, scheduleRepo, "Survivor", now, now.Add(2*time.Hour))
	require.NoError(t, taskRepo.ReplaceAll(ctx, schedule.ID, []string{"a", "b"}))
	require.NoError(t, taskRepo.ReplaceAll(ctx, other.ID, []string{"c"}))

	require.NoError(t, scheduleRepo.Delete(ctx, schedule.ID))

	_, err := scheduleRepo.FindByID(ctx, schedule.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	tasks, err := taskRepo.ListBySchedule(ctx, schedule.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	remaining, err := taskRepo.ListBySchedule(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestScheduleRepository_UpcomingAndPastPartition(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewScheduleRepository(db)
	ctx := context.Background()

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.Local)
	seedSchedule(t, repo, "long past", now.Add(-48*time.Hour), now.Add(-47*time.Hour))
	seedSchedule(t, repo, "just ended", now.Add(-2*time.Hour), now.Add(-time.Hour))
	seedSchedule(t, repo, "ends right now", now.Add(-time.Hour), now)
	seedSchedule(t, repo, "running", now.Add(-30*time.Minute), now.Add(30*time.Minute))
	seedSchedule(t, repo, "tomorrow", now.Add(24*time.Hour), now.Add(25*time.Hour))

	upcoming, err := repo.ListUpcoming(ctx, now)
	require.NoError(t, err)
	past, err := repo.ListPast(ctx, now)
	require.NoError(t, err)

	var upcomingTitles, pastTitles []string
	for _, s := range upcoming {
		upcomingTitles = append(upcomingTitles, s.Title)
	}
	for _, s := range past {
		pastTitles = append(pastTitles, s.Title)
	}

	// end >= now ascending by start; end < now descending by start.
	assert.Equal(t, []string{"ends right now", "running", "tomorrow"}, upcomingTitles)
	assert.Equal(t, []string{"just ended", "long past"}, pastTitles)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(upcoming)+len(past))
}

func TestScheduleRepository_NilHandleFailsFast(t *testing.T) {
	repo := repository.NewScheduleRepository(nil)
	ctx := context.Background()

	_, err := repo.ListAll(ctx)
	assert.ErrorIs(t, err, repository.ErrConnectionUnavailable)

	err = repo.Create(ctx, &model.Schedule{Title: "x", StartAt: time.Now(), EndAt: time.Now().Add(time.Hour)})
	assert.ErrorIs(t, err, repository.ErrConnectionUnavailable)

	_, err = repository.NewTaskRepository(nil).ListBySchedule(ctx, 1)
	assert.ErrorIs(t, err, repository.ErrConnectionUnavailable)
}
