package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"schedule-manager/internal/model"
	"schedule-manager/internal/notify"
	"schedule-manager/internal/repository"
)

const (
	// scheduledRearm is how long a fired minutes-before-start reminder
	// stays silent before it may fire again.
	scheduledRearm = 24 * time.Hour

	// startGrace is how long after the schedule start the acknowledgement
	// prompt waits before it first fires.
	startGrace = 5 * time.Minute

	// startRearm is the repeat interval of the acknowledgement prompt.
	startRearm = 5 * time.Minute
)

// reminderState is the per-schedule bookkeeping of the evaluator. It lives
// only in memory: a restart forgets all of it, so an already-due reminder
// fires once more after startup (at-least-once delivery).
type reminderState struct {
	lastScheduledFire time.Time
	lastStartFire     time.Time
	startAcked        bool
}

// ReminderService decides, on every tick, which notifications are due.
type ReminderService struct {
	scheduleRepo *repository.ScheduleRepository
	taskRepo     *repository.TaskRepository

	mu    sync.Mutex
	state map[uint]*reminderState
}

func NewReminderService(scheduleRepo *repository.ScheduleRepository, taskRepo *repository.TaskRepository) *ReminderService {
	return &ReminderService{
		scheduleRepo: scheduleRepo,
		taskRepo:     taskRepo,
		state:        make(map[uint]*reminderState),
	}
}

// Evaluate scans every schedule that has not ended yet and returns the
// notifications due at now. A read failure for one schedule skips that
// schedule for this tick only; the next tick retries.
func (s *ReminderService) Evaluate(ctx context.Context, now time.Time) []notify.Event {
	schedules, err := s.scheduleRepo.ListUpcoming(ctx, now)
	if err != nil {
		log.Warn().Err(err).Msg("reminder scan skipped")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[uint]struct{}, len(schedules))
	var events []notify.Event

	for _, sched := range schedules {
		if sched.IsCompleted {
			continue
		}
		seen[sched.ID] = struct{}{}

		st := s.state[sched.ID]
		if st == nil {
			st = &reminderState{}
			s.state[sched.ID] = st
		}

		if event, ok := s.dueScheduled(sched, st, now); ok {
			events = append(events, event)
		}
		if event, ok := s.dueStartReminder(ctx, sched, st, now); ok {
			events = append(events, event)
		}
	}

	// Drop bookkeeping for schedules that left the scan window.
	for id := range s.state {
		if _, ok := seen[id]; !ok {
			delete(s.state, id)
		}
	}

	return events
}

func (s *ReminderService) dueScheduled(sched model.Schedule, st *reminderState, now time.Time) (notify.Event, bool) {
	if sched.NotificationMinutes == nil {
		return notify.Event{}, false
	}
	fireAt := sched.StartAt.Add(-time.Duration(*sched.NotificationMinutes) * time.Minute)
	if now.Before(fireAt) {
		return notify.Event{}, false
	}
	if !st.lastScheduledFire.IsZero() && now.Sub(st.lastScheduledFire) <= scheduledRearm {
		return notify.Event{}, false
	}
	st.lastScheduledFire = now
	return notify.Event{
		ScheduleID: sched.ID,
		Title:      sched.Title,
		StartsAt:   sched.StartAt,
		Kind:       notify.KindScheduled,
	}, true
}

func (s *ReminderService) dueStartReminder(ctx context.Context, sched model.Schedule, st *reminderState, now time.Time) (notify.Event, bool) {
	if st.startAcked {
		return notify.Event{}, false
	}
	if now.Before(sched.StartAt.Add(startGrace)) {
		return notify.Event{}, false
	}

	// The sentinel is re-read every tick: completion may have happened
	// through the shell since the last scan.
	acked, err := s.startAcknowledged(ctx, sched.ID)
	if err != nil {
		log.Warn().Err(err).Uint("schedule_id", sched.ID).Msg("start check skipped for this tick")
		return notify.Event{}, false
	}
	if acked {
		st.startAcked = true
		return notify.Event{}, false
	}

	if !st.lastStartFire.IsZero() && now.Sub(st.lastStartFire) <= startRearm {
		return notify.Event{}, false
	}
	st.lastStartFire = now
	return notify.Event{
		ScheduleID: sched.ID,
		Title:      sched.Title,
		StartsAt:   sched.StartAt,
		Kind:       notify.KindStartReminder,
		Message:    fmt.Sprintf("%q started at %s. Check off %q to confirm it is underway.", sched.Title, sched.StartAt.Format("15:04"), model.SentinelStart),
	}, true
}

func (s *ReminderService) startAcknowledged(ctx context.Context, scheduleID uint) (bool, error) {
	tasks, err := s.taskRepo.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return false, err
	}
	for _, task := range tasks {
		if task.Description == model.SentinelStart {
			return task.IsCompleted, nil
		}
	}
	// No sentinel means the start was never acknowledged.
	return false, nil
}

// DailyAgenda builds a plain-text summary of the schedules that overlap the
// given day, for the optional once-a-day digest.
func (s *ReminderService) DailyAgenda(ctx context.Context, now time.Time) (string, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	schedules, err := s.scheduleRepo.ListUpcoming(ctx, dayStart)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Agenda for %s\n", now.Format("2006-01-02")))

	count := 0
	for _, sched := range schedules {
		if !sched.StartAt.Before(dayEnd) {
			continue
		}
		count++
		builder.WriteString(fmt.Sprintf("• %s–%s %s", sched.StartAt.Format("15:04"), sched.EndAt.Format("15:04"), sched.Title))
		if sched.Location != "" {
			builder.WriteString(fmt.Sprintf(" @ %s", sched.Location))
		}
		if sched.IsCompleted {
			builder.WriteString(" ✓")
		}
		builder.WriteByte('\n')
	}
	if count == 0 {
		builder.WriteString("— nothing scheduled\n")
	}

	return strings.TrimSpace(builder.String()), nil
}
