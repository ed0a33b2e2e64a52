package models

import "time"

// Attribute names a character stat a habit trains.
type Attribute string

const (
	AttrStrength   Attribute = "STR"
	AttrIntellect  Attribute = "INT"
	AttrWisdom     Attribute = "WIS"
	AttrCharisma   Attribute = "CHA"
	AttrDiscipline Attribute = "DIS"
)

// ValidAttribute reports whether s is one of the five known attributes.
func ValidAttribute(s string) bool {
	switch Attribute(s) {
	case AttrStrength, AttrIntellect, AttrWisdom, AttrCharisma, AttrDiscipline:
		return true
	}
	return false
}

// Habit is a daily habit tracked by one user. SortOrder only drives display
// order and is not required to be unique.
type Habit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"-"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Goal      int       `gorm:"default:100" json:"goal"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	XPReward  int       `gorm:"default:15" json:"xp_reward"`
	Attribute Attribute `gorm:"size:3;default:DIS" json:"attribute"`
	CreatedAt time.Time `json:"created_at"`
}
