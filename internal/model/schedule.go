package model

import "time"

// Categories suggested by the schedule form. The column itself stays free
// text, so values outside this set are stored as-is.
var Categories = []string{"Private", "Work", "Study", "Other"}

// Schedule is a titled time-boxed event with an attached checklist.
type Schedule struct {
	ID          uint `gorm:"primaryKey"`
	Title       string
	StartAt     time.Time `gorm:"index"`
	EndAt       time.Time `gorm:"index"`
	Category    string
	Location    string
	Description string

	IsLocked    bool `gorm:"default:false"`
	IsCompleted bool `gorm:"default:false"`

	// Minutes before StartAt at which the scheduled reminder fires.
	// nil disables the reminder.
	NotificationMinutes *int

	// Reserved for inter-task reminder cadence.
	TaskNotificationMinutes *int

	CreatedAt time.Time

	// Deleting a schedule removes its tasks in the same transaction; see
	// ScheduleRepository.Delete.
	Tasks []Task `gorm:"foreignKey:ScheduleID"`
}
