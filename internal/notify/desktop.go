package notify

import (
	"context"
	"fmt"

	"github.com/gen2brain/beeep"
)

// DesktopSink pops a system notification balloon.
type DesktopSink struct {
	appName string
}

func NewDesktopSink(appName string) *DesktopSink {
	beeep.AppName = appName
	return &DesktopSink{appName: appName}
}

func (s *DesktopSink) Name() string { return "desktop" }

func (s *DesktopSink) Notify(_ context.Context, event Event) error {
	title := fmt.Sprintf("%s (%s)", event.Title, event.StartLabel())
	body := event.Message
	if body == "" {
		body = "Scheduled reminder"
	}
	if err := beeep.Notify(title, body, ""); err != nil {
		return fmt.Errorf("desktop notify: %w", err)
	}
	return nil
}
