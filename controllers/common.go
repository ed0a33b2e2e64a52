package controllers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/habitmaster/habitmaster/engine"
	"github.com/habitmaster/habitmaster/middleware"
	"github.com/habitmaster/habitmaster/models"
)

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

// loadEngine fetches one user's three collections and builds a fresh engine
// over them. Every request gets its own instance; nothing is shared.
func loadEngine(db *gorm.DB, userID uint) (*engine.Engine, error) {
	var habits []models.Habit
	if err := db.Where("user_id = ?", userID).
		Order("sort_order ASC, id ASC").
		Find(&habits).Error; err != nil {
		return nil, err
	}

	var completions []models.HabitCompletion
	if err := db.Where("user_id = ?", userID).Find(&completions).Error; err != nil {
		return nil, err
	}

	var metrics []models.DailyMetric
	if err := db.Where("user_id = ?", userID).Find(&metrics).Error; err != nil {
		return nil, err
	}

	return engine.New(habits, completions, metrics), nil
}
