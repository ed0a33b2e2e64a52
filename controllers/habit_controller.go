package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/habitmaster/habitmaster/engine"
	"github.com/habitmaster/habitmaster/models"
	"github.com/habitmaster/habitmaster/sheets"
	"github.com/habitmaster/habitmaster/utils"
)

// HabitController handles habit CRUD, completion toggling, streaks, and
// exports. Toggles feed the gamification XP grant and the debounced sheet
// sync.
type HabitController struct {
	db      *gorm.DB
	syncer  *sheets.Syncer
	syncMgr *sheets.Manager
}

// NewHabitController creates a HabitController.
func NewHabitController(db *gorm.DB, syncer *sheets.Syncer, syncMgr *sheets.Manager) *HabitController {
	return &HabitController{db: db, syncer: syncer, syncMgr: syncMgr}
}

// List returns the user's habits in display order.
func (h *HabitController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var habits []models.Habit
	if err := h.db.Where("user_id = ?", userID).
		Order("sort_order ASC, id ASC").
		Find(&habits).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to list habits")
		return
	}

	utils.Success(ctx, habits)
}

// Create adds a habit. Validation happens before any write: an empty name
// is rejected outright.
func (h *HabitController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Name      string `json:"name"`
		Goal      int    `json:"goal"`
		XPReward  int    `json:"xp_reward"`
		Attribute string `json:"attribute"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request payload")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40011, "habit name must not be empty")
		return
	}
	if req.Goal <= 0 || req.Goal > 100 {
		req.Goal = 100
	}
	if req.XPReward <= 0 {
		req.XPReward = 15
	}
	if !models.ValidAttribute(req.Attribute) {
		req.Attribute = string(models.AttrDiscipline)
	}

	var maxOrder int
	h.db.Model(&models.Habit{}).Where("user_id = ?", userID).
		Select("COALESCE(MAX(sort_order), 0)").Scan(&maxOrder)

	habit := models.Habit{
		UserID:    userID,
		Name:      req.Name,
		Goal:      req.Goal,
		SortOrder: maxOrder + 1,
		XPReward:  req.XPReward,
		Attribute: models.Attribute(req.Attribute),
	}
	if err := h.db.Create(&habit).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to create habit")
		return
	}

	utils.InvalidateByPrefix(utils.DashboardCacheKey(userID))
	h.scheduleFullSync(userID)
	utils.Success(ctx, habit)
}

// Delete removes a habit and its completion records.
func (h *HabitController) Delete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	habitID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid habit id")
		return
	}

	var habit models.Habit
	if err := h.db.Where("id = ? AND user_id = ?", habitID, userID).First(&habit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "habit not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to load habit")
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("habit_id = ?", habit.ID).Delete(&models.HabitCompletion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&habit).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to delete habit")
		return
	}

	utils.InvalidateByPrefix(utils.DashboardCacheKey(userID))
	h.scheduleFullSync(userID)
	utils.Success(ctx, gin.H{"message": "habit deleted"})
}

// Toggle flips one habit's completion for a day. Toggling to done grants
// the habit's XP; toggling back off deletes the presence record without
// clawing the XP back.
func (h *HabitController) Toggle(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		HabitID uint   `json:"habit_id"`
		Date    string `json:"date"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40013, "invalid request payload")
		return
	}
	if raw := ctx.Param("id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40012, "invalid habit id")
			return
		}
		req.HabitID = uint(id)
	}
	if req.HabitID == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40013, "habit_id is required")
		return
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.ParseInLocation(engine.DateKeyLayout, req.Date, time.Local)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40014, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	var habit models.Habit
	if err := h.db.Where("id = ? AND user_id = ?", req.HabitID, userID).First(&habit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "habit not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to load habit")
		return
	}

	eng, err := loadEngine(h.db, userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to load habit data")
		return
	}
	mutation := eng.Toggle(habit.ID, date)

	var stats models.UserStats
	var leveledUp bool
	err = h.db.Transaction(func(tx *gorm.DB) error {
		switch mutation.Kind {
		case engine.CreateCompletion:
			record := models.HabitCompletion{
				UserID:         userID,
				HabitID:        habit.ID,
				CompletionDate: mutation.DateKey,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
			var gerr error
			stats, leveledUp, gerr = grantXP(tx, userID, habit.XPReward, habit.Attribute)
			return gerr
		case engine.DeleteCompletion:
			return tx.Where("habit_id = ? AND completion_date = ?", habit.ID, mutation.DateKey).
				Delete(&models.HabitCompletion{}).Error
		}
		return nil
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50015, "failed to persist completion")
		return
	}

	utils.InvalidateByPrefix(utils.DashboardCacheKey(userID))

	completed := mutation.Kind == engine.CreateCompletion
	h.scheduleToggleSync(userID, habit.Name, mutation.DateKey, completed)
	h.scheduleFullSync(userID)

	resp := gin.H{
		"habit_id":  habit.ID,
		"date":      mutation.DateKey,
		"completed": completed,
		"streak":    eng.Streak(),
	}
	if completed {
		resp["xp_gained"] = habit.XPReward
		resp["leveled_up"] = leveledUp
		resp["stats"] = statsResponse(stats)
	}
	utils.Success(ctx, resp)
}

// GetStreak returns the current and best streak over the scan window.
func (h *HabitController) GetStreak(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	eng, err := loadEngine(h.db, userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to load habit data")
		return
	}

	utils.Success(ctx, eng.Streak())
}

// GetSnapshot returns the flat export structure.
func (h *HabitController) GetSnapshot(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	eng, err := loadEngine(h.db, userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to load habit data")
		return
	}

	utils.Success(ctx, eng.Snapshot())
}

// ExportCSV streams the habit summary as a CSV download.
func (h *HabitController) ExportCSV(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	eng, err := loadEngine(h.db, userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to load habit data")
		return
	}
	snap := eng.Snapshot()

	counts := make(map[uint]int)
	for _, c := range snap.Completions {
		counts[c.HabitID]++
	}

	var b strings.Builder
	b.WriteString("Habit Name,Goal,Completions\n")
	for _, habit := range snap.Habits {
		fmt.Fprintf(&b, "%q,%d,%d\n", habit.Name, habit.Goal, counts[habit.ID])
	}

	ctx.Header("Content-Disposition", `attachment; filename="habits_export.csv"`)
	ctx.Data(http.StatusOK, "text/csv", []byte(b.String()))
}

// Dashboard returns the aggregated habit view: habits, streak, and the
// derived statistics block. Cached per user until the next mutation.
func (h *HabitController) Dashboard(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	cacheKey := utils.DashboardCacheKey(userID)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	eng, err := loadEngine(h.db, userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to load habit data")
		return
	}

	payload := gin.H{
		"habits":  eng.Habits(),
		"streak":  eng.Streak(),
		"context": eng.Context(),
	}
	wrapper := struct {
		Code    int         `json:"code"`
		Message string      `json:"message"`
		Data    interface{} `json:"data"`
	}{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, 5*time.Minute)

	utils.Success(ctx, payload)
}

// scheduleFullSync queues a debounced full-snapshot sheet sync for users
// with a linked spreadsheet.
func (h *HabitController) scheduleFullSync(userID uint) {
	if h.syncMgr == nil || h.syncer == nil {
		return
	}
	var link models.SheetLink
	if err := h.db.Where("user_id = ?", userID).First(&link).Error; err != nil {
		return
	}
	db := h.db
	syncer := h.syncer
	h.syncMgr.Schedule(userID, "full sync", func(opCtx context.Context) error {
		token := utils.GetGoogleToken(userID)
		if token == "" {
			return sheets.ErrNeedsReauth
		}
		eng, err := loadEngine(db, userID)
		if err != nil {
			return err
		}
		if err := syncer.SyncSnapshot(opCtx, token, link.SpreadsheetID, eng.Snapshot()); err != nil {
			return err
		}
		now := time.Now()
		return db.Model(&models.SheetLink{}).Where("user_id = ?", userID).
			Update("last_synced_at", &now).Error
	})
}

// scheduleToggleSync queues the single-cell update for one toggle.
func (h *HabitController) scheduleToggleSync(userID uint, habitName, dateKey string, completed bool) {
	if h.syncMgr == nil || h.syncer == nil {
		return
	}
	var link models.SheetLink
	if err := h.db.Where("user_id = ?", userID).First(&link).Error; err != nil {
		return
	}
	syncer := h.syncer
	h.syncMgr.Queue().Enqueue(sheets.Op{
		UserID:      userID,
		Description: "toggle cell",
		Do: func(opCtx context.Context) error {
			token := utils.GetGoogleToken(userID)
			if token == "" {
				return sheets.ErrNeedsReauth
			}
			return syncer.SyncToggle(opCtx, token, link.SpreadsheetID, habitName, dateKey, completed)
		},
	})
}
