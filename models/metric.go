package models

import "time"

// DailyMetric stores wellness values for one day. Mood and SleepHours are
// optional and updated independently; at most one row exists per
// (user_id, metric_date) pair.
type DailyMetric struct {
	ID         uint       `gorm:"primaryKey" json:"-"`
	UserID     uint       `gorm:"not null;index:idx_metric_day,unique" json:"-"`
	MetricDate string     `gorm:"size:10;not null;index:idx_metric_day,unique" json:"metric_date"`
	Mood       *int       `json:"mood"`
	SleepHours *float64   `json:"sleep_hours"`
	CreatedAt  time.Time  `json:"-"`
	UpdatedAt  time.Time  `json:"-"`
}
