package models

import "time"

// SheetLink records the Google spreadsheet connected to a user's account.
type SheetLink struct {
	ID             uint       `gorm:"primaryKey" json:"-"`
	UserID         uint       `gorm:"uniqueIndex;not null" json:"-"`
	SpreadsheetID  string     `gorm:"size:128;not null" json:"spreadsheet_id"`
	SpreadsheetURL string     `gorm:"size:512" json:"spreadsheet_url"`
	LastSyncedAt   *time.Time `json:"last_synced_at"`
	CreatedAt      time.Time  `json:"-"`
	UpdatedAt      time.Time  `json:"-"`
}
