package notify

import (
	"context"

	"github.com/rs/zerolog/log"
)

// LogSink records every emitted event in the application log. It is always
// enabled, so reminder activity stays visible even with no other sink.
type LogSink struct{}

func NewLogSink() *LogSink { return &LogSink{} }

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Notify(_ context.Context, event Event) error {
	log.Info().
		Uint("schedule_id", event.ScheduleID).
		Str("kind", string(event.Kind)).
		Str("title", event.Title).
		Str("starts_at", event.StartLabel()).
		Msg("reminder fired")
	return nil
}
