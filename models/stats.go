package models

import (
	"time"

	"gorm.io/datatypes"
)

// AttributeSet holds the five character stats, serialized as one JSON column.
type AttributeSet struct {
	STR int `json:"STR"`
	INT int `json:"INT"`
	WIS int `json:"WIS"`
	CHA int `json:"CHA"`
	DIS int `json:"DIS"`
}

// Add bumps the named attribute by delta and returns the updated set.
func (a AttributeSet) Add(attr Attribute, delta int) AttributeSet {
	switch attr {
	case AttrStrength:
		a.STR += delta
	case AttrIntellect:
		a.INT += delta
	case AttrWisdom:
		a.WIS += delta
	case AttrCharisma:
		a.CHA += delta
	default:
		a.DIS += delta
	}
	return a
}

// UserStats is the per-user gamification document. Level starts at 1 and
// NextLevelXP grows by a 1.25 curve on every level-up.
type UserStats struct {
	ID          uint                                 `gorm:"primaryKey" json:"-"`
	UserID      uint                                 `gorm:"uniqueIndex;not null" json:"-"`
	Level       int                                  `gorm:"default:1" json:"level"`
	CurrentXP   int                                  `gorm:"default:0" json:"currentXp"`
	NextLevelXP int                                  `gorm:"default:100" json:"nextLevelXp"`
	Attributes  datatypes.JSONType[AttributeSet]     `json:"attributes"`
	CreatedAt   time.Time                            `json:"-"`
	UpdatedAt   time.Time                            `json:"-"`
}

// DefaultStats returns the starting stats document for a new user.
func DefaultStats(userID uint) UserStats {
	return UserStats{
		UserID:      userID,
		Level:       1,
		CurrentXP:   0,
		NextLevelXP: 100,
		Attributes:  datatypes.NewJSONType(AttributeSet{STR: 5, INT: 5, WIS: 5, CHA: 5, DIS: 5}),
	}
}
