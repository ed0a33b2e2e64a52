package controllers

import (
	"net/http"
	"testing"

	"github.com/habitmaster/habitmaster/models"
)

func TestRegisterCreatesUserAndStats(t *testing.T) {
	db := newTestDB(t)
	ac := NewAuthController(db)

	body := map[string]string{
		"username": "hero",
		"email":    "hero@example.com",
		"password": "secret123",
	}
	w, env := doJSON(t, ac.Register, http.MethodPost, body, 0)
	if w.Code != http.StatusOK || env.Code != 0 {
		t.Fatalf("register failed: status=%d code=%d msg=%s", w.Code, env.Code, env.Message)
	}

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	decodeData(t, env, &resp)
	if resp.Token == "" {
		t.Error("expected a token")
	}

	var stats models.UserStats
	if err := db.Where("user_id = ?", resp.User.ID).First(&stats).Error; err != nil {
		t.Fatalf("stats row not created: %v", err)
	}
	if stats.Level != 1 || stats.NextLevelXP != 100 {
		t.Errorf("unexpected starting stats: level=%d next=%d", stats.Level, stats.NextLevelXP)
	}
	if attrs := stats.Attributes.Data(); attrs.STR != 5 || attrs.DIS != 5 {
		t.Errorf("unexpected starting attributes: %+v", attrs)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	db := newTestDB(t)
	ac := NewAuthController(db)
	newTestUser(t, db, "taken")

	body := map[string]string{
		"username": "taken",
		"email":    "other@example.com",
		"password": "secret123",
	}
	w, env := doJSON(t, ac.Register, http.MethodPost, body, 0)
	if w.Code != http.StatusConflict || env.Code != 40901 {
		t.Fatalf("expected conflict, got status=%d code=%d", w.Code, env.Code)
	}
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	ac := NewAuthController(db)
	user := newTestUser(t, db, "alice")

	w, env := doJSON(t, ac.Login, http.MethodPost, map[string]string{
		"email":    user.Email,
		"password": "password123",
	}, 0)
	if w.Code != http.StatusOK || env.Code != 0 {
		t.Fatalf("login failed: status=%d code=%d", w.Code, env.Code)
	}

	w, env = doJSON(t, ac.Login, http.MethodPost, map[string]string{
		"email":    user.Email,
		"password": "wrong-password",
	}, 0)
	if w.Code != http.StatusUnauthorized || env.Code != 40106 {
		t.Fatalf("expected 40106 on bad password, got status=%d code=%d", w.Code, env.Code)
	}

	w, env = doJSON(t, ac.Login, http.MethodPost, map[string]string{
		"email":    "nobody@example.com",
		"password": "password123",
	}, 0)
	if w.Code != http.StatusUnauthorized || env.Code != 40106 {
		t.Fatalf("expected 40106 on unknown email, got status=%d code=%d", w.Code, env.Code)
	}
}

func TestUpdateProfileSanitizesBio(t *testing.T) {
	db := newTestDB(t)
	ac := NewAuthController(db)
	user := newTestUser(t, db, "bob")

	w, env := doJSON(t, ac.UpdateProfile, http.MethodPatch, map[string]string{
		"bio": `hello <script>alert("x")</script>world`,
	}, user.ID)
	if w.Code != http.StatusOK || env.Code != 0 {
		t.Fatalf("update failed: status=%d code=%d", w.Code, env.Code)
	}

	var saved models.User
	if err := db.First(&saved, user.ID).Error; err != nil {
		t.Fatal(err)
	}
	if saved.Bio != "hello world" {
		t.Errorf("bio not sanitized: %q", saved.Bio)
	}
}
