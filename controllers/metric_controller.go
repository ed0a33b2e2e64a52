package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/habitmaster/habitmaster/engine"
	"github.com/habitmaster/habitmaster/models"
	"github.com/habitmaster/habitmaster/utils"
)

// MetricController handles daily wellness metrics.
type MetricController struct {
	db *gorm.DB
}

// NewMetricController creates a MetricController.
func NewMetricController(db *gorm.DB) *MetricController {
	return &MetricController{db: db}
}

// List returns all recorded metrics for the user.
func (m *MetricController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var metrics []models.DailyMetric
	if err := m.db.Where("user_id = ?", userID).
		Order("metric_date ASC").
		Find(&metrics).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to list metrics")
		return
	}

	utils.Success(ctx, metrics)
}

// Upsert records mood and/or sleep for a day. Partial updates preserve the
// field that was not sent; at most one row exists per (user, date).
func (m *MetricController) Upsert(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Date       string   `json:"date"`
		Mood       *int     `json:"mood"`
		SleepHours *float64 `json:"sleep_hours"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}
	if req.Mood == nil && req.SleepHours == nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, "at least one of mood or sleep_hours is required")
		return
	}
	if req.Mood != nil && (*req.Mood < 1 || *req.Mood > 5) {
		utils.Error(ctx, http.StatusBadRequest, 40022, "mood must be between 1 and 5")
		return
	}
	if req.SleepHours != nil && *req.SleepHours < 0 {
		utils.Error(ctx, http.StatusBadRequest, 40023, "sleep_hours must not be negative")
		return
	}

	dateKey := engine.DateKey(time.Now())
	if req.Date != "" {
		parsed, err := time.ParseInLocation(engine.DateKeyLayout, req.Date, time.Local)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40024, "date must be YYYY-MM-DD")
			return
		}
		dateKey = engine.DateKey(parsed)
	}

	var metric models.DailyMetric
	err := m.db.Where("user_id = ? AND metric_date = ?", userID, dateKey).First(&metric).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metric = models.DailyMetric{UserID: userID, MetricDate: dateKey}
	} else if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load metric")
		return
	}

	if req.Mood != nil {
		metric.Mood = req.Mood
	}
	if req.SleepHours != nil {
		metric.SleepHours = req.SleepHours
	}

	if err := m.db.Save(&metric).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to save metric")
		return
	}

	utils.InvalidateByPrefix(utils.DashboardCacheKey(userID))
	utils.Success(ctx, metric)
}
