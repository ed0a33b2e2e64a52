package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/habitmaster/habitmaster/engine"
	"github.com/habitmaster/habitmaster/models"
)

func TestCreateHabitDefaults(t *testing.T) {
	db := newTestDB(t)
	hc := NewHabitController(db, nil, nil)
	user := newTestUser(t, db, "creator")

	w, env := doJSON(t, hc.Create, http.MethodPost, map[string]interface{}{
		"name": "   ",
	}, user.ID)
	if w.Code != http.StatusBadRequest || env.Code != 40011 {
		t.Fatalf("expected empty-name rejection, got status=%d code=%d", w.Code, env.Code)
	}

	w, env = doJSON(t, hc.Create, http.MethodPost, map[string]interface{}{
		"name":      "Morning Run",
		"goal":      250,
		"attribute": "XYZ",
	}, user.ID)
	if w.Code != http.StatusOK || env.Code != 0 {
		t.Fatalf("create failed: status=%d code=%d", w.Code, env.Code)
	}

	var habit models.Habit
	decodeData(t, env, &habit)
	if habit.Goal != 100 {
		t.Errorf("out-of-range goal should reset to 100, got %d", habit.Goal)
	}
	if habit.XPReward != 15 {
		t.Errorf("xp reward default = %d, want 15", habit.XPReward)
	}
	if habit.Attribute != models.AttrDiscipline {
		t.Errorf("unknown attribute should fall back to DIS, got %s", habit.Attribute)
	}
	if habit.SortOrder != 1 {
		t.Errorf("first habit sort order = %d, want 1", habit.SortOrder)
	}

	_, env = doJSON(t, hc.Create, http.MethodPost, map[string]interface{}{"name": "Read"}, user.ID)
	var second models.Habit
	decodeData(t, env, &second)
	if second.SortOrder != 2 {
		t.Errorf("second habit sort order = %d, want 2", second.SortOrder)
	}
}

func TestToggleGrantsXPAndStreak(t *testing.T) {
	db := newTestDB(t)
	hc := NewHabitController(db, nil, nil)
	user := newTestUser(t, db, "runner")

	habit := models.Habit{UserID: user.ID, Name: "Run", Goal: 100, XPReward: 50, Attribute: models.AttrStrength}
	if err := db.Create(&habit).Error; err != nil {
		t.Fatal(err)
	}

	today := engine.DateKey(time.Now())
	w, env := doJSON(t, hc.Toggle, http.MethodPost, map[string]interface{}{
		"habit_id": habit.ID,
	}, user.ID)
	if w.Code != http.StatusOK || env.Code != 0 {
		t.Fatalf("toggle failed: status=%d code=%d msg=%s", w.Code, env.Code, env.Message)
	}

	var resp struct {
		Completed bool   `json:"completed"`
		Date      string `json:"date"`
		XPGained  int    `json:"xp_gained"`
		LeveledUp bool   `json:"leveled_up"`
		Streak    struct {
			Current int `json:"current"`
			Best    int `json:"best"`
		} `json:"streak"`
	}
	decodeData(t, env, &resp)
	if !resp.Completed || resp.Date != today {
		t.Fatalf("unexpected toggle result: %+v", resp)
	}
	if resp.XPGained != 50 || resp.LeveledUp {
		t.Errorf("xp_gained=%d leveled_up=%v, want 50/false", resp.XPGained, resp.LeveledUp)
	}
	if resp.Streak.Current != 1 {
		t.Errorf("streak after completing every habit today = %d, want 1", resp.Streak.Current)
	}

	var stats models.UserStats
	if err := db.Where("user_id = ?", user.ID).First(&stats).Error; err != nil {
		t.Fatal(err)
	}
	if stats.CurrentXP != 50 {
		t.Errorf("currentXp = %d, want 50", stats.CurrentXP)
	}
	if attrs := stats.Attributes.Data(); attrs.STR != 6 {
		t.Errorf("STR = %d, want 6 after one grant", attrs.STR)
	}

	// Toggling off removes the record but never claws back XP.
	_, env = doJSON(t, hc.Toggle, http.MethodPost, map[string]interface{}{
		"habit_id": habit.ID,
	}, user.ID)
	decodeData(t, env, &resp)
	if resp.Completed {
		t.Error("second toggle should uncomplete")
	}

	var count int64
	db.Model(&models.HabitCompletion{}).Where("habit_id = ?", habit.ID).Count(&count)
	if count != 0 {
		t.Errorf("completion rows = %d, want 0", count)
	}
	db.Where("user_id = ?", user.ID).First(&stats)
	if stats.CurrentXP != 50 {
		t.Errorf("currentXp after untoggle = %d, want 50", stats.CurrentXP)
	}
}

func TestToggleLevelUpCarriesOverflow(t *testing.T) {
	db := newTestDB(t)
	hc := NewHabitController(db, nil, nil)
	user := newTestUser(t, db, "leveler")

	habit := models.Habit{UserID: user.ID, Name: "Deep Work", Goal: 100, XPReward: 120, Attribute: models.AttrIntellect}
	if err := db.Create(&habit).Error; err != nil {
		t.Fatal(err)
	}

	_, env := doJSON(t, hc.Toggle, http.MethodPost, map[string]interface{}{
		"habit_id": habit.ID,
	}, user.ID)

	var resp struct {
		LeveledUp bool `json:"leveled_up"`
		Stats     struct {
			Level       int `json:"level"`
			CurrentXP   int `json:"currentXp"`
			NextLevelXP int `json:"nextLevelXp"`
		} `json:"stats"`
	}
	decodeData(t, env, &resp)
	if !resp.LeveledUp {
		t.Fatal("expected a level-up")
	}
	if resp.Stats.Level != 2 || resp.Stats.CurrentXP != 20 || resp.Stats.NextLevelXP != 125 {
		t.Errorf("stats after level-up = %+v, want level 2, 20 xp, 125 next", resp.Stats)
	}
}

func TestToggleRejectsForeignHabit(t *testing.T) {
	db := newTestDB(t)
	hc := NewHabitController(db, nil, nil)
	owner := newTestUser(t, db, "owner")
	other := newTestUser(t, db, "other")

	habit := models.Habit{UserID: owner.ID, Name: "Private", Goal: 100, XPReward: 15, Attribute: models.AttrDiscipline}
	if err := db.Create(&habit).Error; err != nil {
		t.Fatal(err)
	}

	w, env := doJSON(t, hc.Toggle, http.MethodPost, map[string]interface{}{
		"habit_id": habit.ID,
	}, other.ID)
	if w.Code != http.StatusNotFound || env.Code != 40420 {
		t.Fatalf("expected not-found for foreign habit, got status=%d code=%d", w.Code, env.Code)
	}
}

func TestDeleteHabitRemovesCompletions(t *testing.T) {
	db := newTestDB(t)
	hc := NewHabitController(db, nil, nil)
	user := newTestUser(t, db, "deleter")

	habit := models.Habit{UserID: user.ID, Name: "Old", Goal: 100, XPReward: 15, Attribute: models.AttrDiscipline}
	if err := db.Create(&habit).Error; err != nil {
		t.Fatal(err)
	}
	comp := models.HabitCompletion{UserID: user.ID, HabitID: habit.ID, CompletionDate: "2026-08-01"}
	if err := db.Create(&comp).Error; err != nil {
		t.Fatal(err)
	}

	w, env := doJSON(t, hc.Delete, http.MethodDelete, nil, user.ID,
		gin.Param{Key: "id", Value: strconv.FormatUint(uint64(habit.ID), 10)})
	if w.Code != http.StatusOK || env.Code != 0 {
		t.Fatalf("delete failed: status=%d code=%d", w.Code, env.Code)
	}

	var count int64
	db.Model(&models.HabitCompletion{}).Where("habit_id = ?", habit.ID).Count(&count)
	if count != 0 {
		t.Errorf("completions left behind: %d", count)
	}
}

func TestExportCSV(t *testing.T) {
	db := newTestDB(t)
	hc := NewHabitController(db, nil, nil)
	user := newTestUser(t, db, "exporter")

	habit := models.Habit{UserID: user.ID, Name: "Read", Goal: 100, XPReward: 15, Attribute: models.AttrIntellect}
	if err := db.Create(&habit).Error; err != nil {
		t.Fatal(err)
	}
	comp := models.HabitCompletion{UserID: user.ID, HabitID: habit.ID, CompletionDate: "2026-08-20"}
	if err := db.Create(&comp).Error; err != nil {
		t.Fatal(err)
	}

	w, _ := doJSON(t, hc.ExportCSV, http.MethodGet, nil, user.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.HasPrefix(body, "Habit Name,Goal,Completions\n") {
		t.Errorf("missing CSV header: %q", body)
	}
	if !strings.Contains(body, `"Read",100,1`) {
		t.Errorf("missing habit row: %q", body)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "habits_export.csv") {
		t.Errorf("unexpected disposition: %q", cd)
	}
}
