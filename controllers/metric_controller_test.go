package controllers

import (
	"net/http"
	"testing"

	"github.com/habitmaster/habitmaster/models"
)

func TestMetricUpsertValidation(t *testing.T) {
	db := newTestDB(t)
	mc := NewMetricController(db)
	user := newTestUser(t, db, "wellness")

	w, env := doJSON(t, mc.Upsert, http.MethodPut, map[string]interface{}{
		"date": "2026-08-20",
	}, user.ID)
	if w.Code != http.StatusBadRequest || env.Code != 40021 {
		t.Fatalf("expected field-required rejection, got status=%d code=%d", w.Code, env.Code)
	}

	w, env = doJSON(t, mc.Upsert, http.MethodPut, map[string]interface{}{
		"mood": 9,
	}, user.ID)
	if w.Code != http.StatusBadRequest || env.Code != 40022 {
		t.Fatalf("expected mood-range rejection, got status=%d code=%d", w.Code, env.Code)
	}

	w, env = doJSON(t, mc.Upsert, http.MethodPut, map[string]interface{}{
		"sleep_hours": -1.0,
	}, user.ID)
	if w.Code != http.StatusBadRequest || env.Code != 40023 {
		t.Fatalf("expected sleep rejection, got status=%d code=%d", w.Code, env.Code)
	}

	w, env = doJSON(t, mc.Upsert, http.MethodPut, map[string]interface{}{
		"date": "08/20/2026",
		"mood": 3,
	}, user.ID)
	if w.Code != http.StatusBadRequest || env.Code != 40024 {
		t.Fatalf("expected date-format rejection, got status=%d code=%d", w.Code, env.Code)
	}
}

func TestMetricUpsertMergesPartialFields(t *testing.T) {
	db := newTestDB(t)
	mc := NewMetricController(db)
	user := newTestUser(t, db, "sleeper")

	w, env := doJSON(t, mc.Upsert, http.MethodPut, map[string]interface{}{
		"date": "2026-08-20",
		"mood": 4,
	}, user.ID)
	if w.Code != http.StatusOK || env.Code != 0 {
		t.Fatalf("first upsert failed: status=%d code=%d", w.Code, env.Code)
	}

	w, env = doJSON(t, mc.Upsert, http.MethodPut, map[string]interface{}{
		"date":        "2026-08-20",
		"sleep_hours": 7.5,
	}, user.ID)
	if w.Code != http.StatusOK || env.Code != 0 {
		t.Fatalf("second upsert failed: status=%d code=%d", w.Code, env.Code)
	}

	var rows []models.DailyMetric
	if err := db.Where("user_id = ?", user.ID).Find(&rows).Error; err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want one row per day", len(rows))
	}
	row := rows[0]
	if row.Mood == nil || *row.Mood != 4 {
		t.Errorf("mood lost on partial update: %+v", row.Mood)
	}
	if row.SleepHours == nil || *row.SleepHours != 7.5 {
		t.Errorf("sleep_hours = %+v, want 7.5", row.SleepHours)
	}
}

func TestMetricListOrdered(t *testing.T) {
	db := newTestDB(t)
	mc := NewMetricController(db)
	user := newTestUser(t, db, "lister")

	for _, day := range []string{"2026-08-22", "2026-08-20", "2026-08-21"} {
		mood := 3
		if err := db.Create(&models.DailyMetric{UserID: user.ID, MetricDate: day, Mood: &mood}).Error; err != nil {
			t.Fatal(err)
		}
	}

	_, env := doJSON(t, mc.List, http.MethodGet, nil, user.ID)
	var rows []models.DailyMetric
	decodeData(t, env, &rows)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0].MetricDate != "2026-08-20" || rows[2].MetricDate != "2026-08-22" {
		t.Errorf("rows not ordered by date: %s .. %s", rows[0].MetricDate, rows[2].MetricDate)
	}
}
