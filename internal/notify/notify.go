package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Kind tags the reminder that produced an event.
type Kind string

const (
	// KindScheduled is the minutes-before-start reminder.
	KindScheduled Kind = "scheduled"
	// KindStartReminder is the repeating prompt to acknowledge that a
	// schedule has started.
	KindStartReminder Kind = "start_reminder"
	// KindDailyAgenda is the optional once-a-day digest of today's
	// schedules.
	KindDailyAgenda Kind = "daily_agenda"
)

// Event is one notification produced by the reminder evaluator. Rendering
// (balloon, chat message, sound) is entirely the sink's business.
type Event struct {
	ScheduleID uint
	Title      string
	StartsAt   time.Time
	Kind       Kind
	// Message is set for start reminders only.
	Message string
}

// StartLabel renders the schedule start in the form shown to the user.
func (e Event) StartLabel() string {
	return e.StartsAt.Format("2006-01-02 15:04")
}

// Sink delivers a single event to one output channel.
type Sink interface {
	Name() string
	Notify(ctx context.Context, event Event) error
}

// Dispatcher fans events out to every configured sink. A failing sink is
// logged and skipped; delivery to the remaining sinks continues.
type Dispatcher struct {
	sinks []Sink
}

func NewDispatcher(sinks ...Sink) *Dispatcher {
	return &Dispatcher{sinks: sinks}
}

func (d *Dispatcher) Dispatch(ctx context.Context, events []Event) {
	for _, event := range events {
		for _, sink := range d.sinks {
			if err := sink.Notify(ctx, event); err != nil {
				log.Error().Err(err).
					Str("sink", sink.Name()).
					Uint("schedule_id", event.ScheduleID).
					Str("kind", string(event.Kind)).
					Msg("notification delivery failed")
			}
		}
	}
}
