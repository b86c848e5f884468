package model

import "time"

// Sentinel task descriptions the shell uses to bookend every checklist.
// Completing SentinelEnd drives the owning schedule's IsCompleted flag;
// SentinelStart acknowledges that the schedule actually started.
const (
	SentinelStart = "schedule start"
	SentinelEnd   = "schedule end"
)

// Task is a single checklist item bound to one schedule.
type Task struct {
	ID          uint `gorm:"primaryKey"`
	ScheduleID  uint `gorm:"index"`
	Description string
	IsCompleted bool `gorm:"default:false"`
	CompletedAt *time.Time
}
