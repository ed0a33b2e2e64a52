package controllers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/habitmaster/habitmaster/ai"
	"github.com/habitmaster/habitmaster/config"
)

func TestCoachChatRelaysStream(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hi\"}}]}\n\n")
		io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	db := newTestDB(t)
	client := ai.NewClient(config.AppConfig{AIBaseURL: srv.URL, AIAPIKey: "test-key", AIModel: "test-model"})
	cc := NewCoachController(db, client)
	user := newTestUser(t, db, "coached")

	w, _ := doJSON(t, cc.Chat, http.MethodPost, map[string]interface{}{
		"messages": []ai.Message{{Role: "user", Content: "How am I doing?"}},
	}, user.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("chat status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "data: [DONE]") {
		t.Errorf("stream not relayed: %q", body)
	}

	// The request forwarded upstream must carry the injected system prompt
	// before the user's message.
	if !strings.Contains(gotBody, "HabitMaster AI Coach") {
		t.Errorf("system prompt missing from upstream payload: %s", gotBody)
	}
	if !strings.Contains(gotBody, "How am I doing?") {
		t.Errorf("user message missing from upstream payload: %s", gotBody)
	}
}

func TestCoachChatRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	db := newTestDB(t)
	client := ai.NewClient(config.AppConfig{AIBaseURL: srv.URL, AIAPIKey: "test-key", AIModel: "test-model"})
	cc := NewCoachController(db, client)
	user := newTestUser(t, db, "limited")

	w, env := doJSON(t, cc.Chat, http.MethodPost, map[string]interface{}{
		"messages": []ai.Message{{Role: "user", Content: "hello"}},
	}, user.ID)
	if w.Code != http.StatusTooManyRequests || env.Code != 42930 {
		t.Fatalf("expected 429/42930, got status=%d code=%d", w.Code, env.Code)
	}
}

func TestCoachChatNotConfigured(t *testing.T) {
	db := newTestDB(t)
	cc := NewCoachController(db, ai.NewClient(config.AppConfig{}))
	user := newTestUser(t, db, "unconfigured")

	w, env := doJSON(t, cc.Chat, http.MethodPost, map[string]interface{}{
		"messages": []ai.Message{{Role: "user", Content: "hello"}},
	}, user.ID)
	if w.Code != http.StatusServiceUnavailable || env.Code != 50310 {
		t.Fatalf("expected 503/50310, got status=%d code=%d", w.Code, env.Code)
	}
}
