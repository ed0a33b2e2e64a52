package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/habitmaster/habitmaster/models"
	"github.com/habitmaster/habitmaster/sheets"
	"github.com/habitmaster/habitmaster/utils"
)

// SheetsController manages the Google Sheets link lifecycle: creating the
// spreadsheet, forcing a sync, and reporting link status.
type SheetsController struct {
	db      *gorm.DB
	client  *sheets.Client
	syncer  *sheets.Syncer
	syncMgr *sheets.Manager
}

// NewSheetsController creates a SheetsController.
func NewSheetsController(db *gorm.DB, client *sheets.Client, syncer *sheets.Syncer, mgr *sheets.Manager) *SheetsController {
	return &SheetsController{db: db, client: client, syncer: syncer, syncMgr: mgr}
}

// Create provisions the user's spreadsheet with the standard tabs and
// stores the link. Reuses an existing spreadsheet when one is still live.
func (s *SheetsController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	token := utils.GetGoogleToken(userID)
	if token == "" {
		utils.Success(ctx, gin.H{"needs_reauth": true})
		return
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50018, "failed to load user")
		return
	}

	var link models.SheetLink
	if err := s.db.Where("user_id = ?", userID).First(&link).Error; err == nil {
		exists, cerr := s.client.SpreadsheetExists(ctx.Request.Context(), token, link.SpreadsheetID)
		if cerr == nil && exists {
			utils.Success(ctx, gin.H{
				"spreadsheet_id":  link.SpreadsheetID,
				"spreadsheet_url": link.SpreadsheetURL,
				"created":         false,
			})
			return
		}
		if errors.Is(cerr, sheets.ErrNeedsReauth) {
			utils.Success(ctx, gin.H{"needs_reauth": true})
			return
		}
	}

	title := "HabitMaster - " + user.Email
	created, err := s.client.CreateSpreadsheet(ctx.Request.Context(), token, title, sheets.DefaultTabs())
	if err != nil {
		if errors.Is(err, sheets.ErrNeedsReauth) {
			utils.Success(ctx, gin.H{"needs_reauth": true})
			return
		}
		utils.Sugar.Errorf("spreadsheet create failed for user %d: %v", userID, err)
		utils.Error(ctx, http.StatusBadGateway, 50230, "failed to create spreadsheet")
		return
	}

	link = models.SheetLink{
		UserID:         userID,
		SpreadsheetID:  created.SpreadsheetID,
		SpreadsheetURL: created.SpreadsheetURL,
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"spreadsheet_id", "spreadsheet_url"}),
	}).Create(&link).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50016, "failed to save sheet link")
		return
	}

	// Seed the new spreadsheet immediately so the user opens a populated
	// document rather than four empty tabs.
	if serr := s.syncNow(ctx, userID, token, created.SpreadsheetID); serr != nil {
		utils.Sugar.Warnf("initial sheet sync failed for user %d: %v", userID, serr)
	}

	utils.Success(ctx, gin.H{
		"spreadsheet_id":  created.SpreadsheetID,
		"spreadsheet_url": created.SpreadsheetURL,
		"created":         true,
	})
}

// Sync runs a full snapshot sync right away, bypassing the debounce window.
func (s *SheetsController) Sync(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var link models.SheetLink
	if err := s.db.Where("user_id = ?", userID).First(&link).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40410, "no spreadsheet linked")
		return
	}

	token := utils.GetGoogleToken(userID)
	if token == "" {
		utils.Success(ctx, gin.H{"needs_reauth": true})
		return
	}

	if err := s.syncNow(ctx, userID, token, link.SpreadsheetID); err != nil {
		if errors.Is(err, sheets.ErrNeedsReauth) {
			utils.Success(ctx, gin.H{"needs_reauth": true})
			return
		}
		utils.Sugar.Errorf("manual sheet sync failed for user %d: %v", userID, err)
		utils.Error(ctx, http.StatusBadGateway, 50231, "sync failed")
		return
	}

	utils.Success(ctx, gin.H{"synced": true, "synced_at": time.Now()})
}

// Status reports the link state the settings page renders.
func (s *SheetsController) Status(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var link models.SheetLink
	if err := s.db.Where("user_id = ?", userID).First(&link).Error; err != nil {
		utils.Success(ctx, gin.H{"connected": false})
		return
	}

	resp := gin.H{
		"connected":       true,
		"spreadsheet_id":  link.SpreadsheetID,
		"spreadsheet_url": link.SpreadsheetURL,
		"last_synced_at":  link.LastSyncedAt,
		"needs_reauth":    utils.GetGoogleToken(userID) == "",
	}
	if s.syncMgr != nil {
		resp["pending_ops"] = s.syncMgr.Queue().Len()
	}
	utils.Success(ctx, resp)
}

// Disconnect removes the sheet link and cached token. The spreadsheet
// itself stays in the user's Drive.
func (s *SheetsController) Disconnect(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	if err := s.db.Where("user_id = ?", userID).Delete(&models.SheetLink{}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50017, "failed to remove sheet link")
		return
	}
	utils.DeleteGoogleToken(userID)
	utils.Success(ctx, gin.H{"disconnected": true})
}

func (s *SheetsController) syncNow(ctx *gin.Context, userID uint, token, spreadsheetID string) error {
	eng, err := loadEngine(s.db, userID)
	if err != nil {
		return err
	}
	snap := eng.Snapshot()

	names := make([]string, 0, len(snap.Habits))
	for _, h := range snap.Habits {
		names = append(names, h.Name)
	}
	if err := s.syncer.SyncHeaders(ctx.Request.Context(), token, spreadsheetID, names); err != nil {
		return err
	}
	if err := s.syncer.SyncSnapshot(ctx.Request.Context(), token, spreadsheetID, snap); err != nil {
		return err
	}

	now := time.Now()
	return s.db.Model(&models.SheetLink{}).Where("user_id = ?", userID).
		Update("last_synced_at", &now).Error
}
