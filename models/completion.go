package models

import "time"

// HabitCompletion marks a habit as done on one calendar day. It is a presence
// record: the (habit_id, completion_date) pair either exists or it does not.
// CompletionDate is a YYYY-MM-DD date key in the user's local timezone.
type HabitCompletion struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	UserID         uint      `gorm:"index;not null" json:"-"`
	HabitID        uint      `gorm:"not null;index:idx_habit_completion_day,unique" json:"habit_id"`
	CompletionDate string    `gorm:"size:10;not null;index:idx_habit_completion_day,unique" json:"completion_date"`
	CreatedAt      time.Time `json:"-"`
}
