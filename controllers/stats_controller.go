package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/habitmaster/habitmaster/models"
	"github.com/habitmaster/habitmaster/utils"
)

// StatsController serves the gamification stats document.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns the user's level, XP, and attributes, initializing the
// document on first access.
func (s *StatsController) GetStats(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	stats, err := loadOrInitStats(s.db, userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load stats")
		return
	}

	utils.Success(ctx, statsResponse(stats))
}

func loadOrInitStats(db *gorm.DB, userID uint) (models.UserStats, error) {
	var stats models.UserStats
	err := db.Where("user_id = ?", userID).First(&stats).Error
	if err == nil {
		return stats, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return stats, err
	}
	stats = models.DefaultStats(userID)
	if err := db.Create(&stats).Error; err != nil {
		return stats, err
	}
	return stats, nil
}

// grantXP applies one XP gain inside tx: add XP, bump the trained attribute
// by one, and level up on crossing the threshold with overflow carried into
// the next level. The stats row is locked for the duration.
func grantXP(tx *gorm.DB, userID uint, xp int, attr models.Attribute) (models.UserStats, bool, error) {
	var stats models.UserStats
	q := tx
	// SQLite has no row locks; the whole transaction serializes instead.
	if tx.Dialector.Name() == "mysql" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.Where("user_id = ?", userID).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stats = models.DefaultStats(userID)
		if err := tx.Create(&stats).Error; err != nil {
			return stats, false, err
		}
	} else if err != nil {
		return stats, false, err
	}

	stats.CurrentXP += xp
	attrs := stats.Attributes.Data()
	stats.Attributes = datatypes.NewJSONType(attrs.Add(attr, 1))

	leveledUp := false
	for stats.CurrentXP >= stats.NextLevelXP {
		stats.CurrentXP -= stats.NextLevelXP
		stats.Level++
		stats.NextLevelXP = stats.NextLevelXP * 125 / 100
		leveledUp = true
	}

	if err := tx.Save(&stats).Error; err != nil {
		return stats, false, err
	}
	return stats, leveledUp, nil
}

func statsResponse(stats models.UserStats) gin.H {
	return gin.H{
		"level":       stats.Level,
		"currentXp":   stats.CurrentXP,
		"nextLevelXp": stats.NextLevelXP,
		"attributes":  stats.Attributes.Data(),
	}
}
