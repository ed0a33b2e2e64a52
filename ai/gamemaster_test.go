package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func chatServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func testClient(srv *httptest.Server) *Client {
	return &Client{baseURL: srv.URL, apiKey: "test-key", model: "test-model", httpc: srv.Client()}
}

func TestAnalyzeQuestParsesWrappedJSON(t *testing.T) {
	srv := chatServer(t, "Sure, here is my analysis:\n{\"xp\": 30, \"attribute\": \"STR\", \"reasoning\": \"cardio\"}", http.StatusOK)
	defer srv.Close()

	got := testClient(srv).AnalyzeQuest(context.Background(), "Morning run")
	if got.XP != 30 || got.Attribute != "STR" || got.Reasoning != "cardio" {
		t.Fatalf("unexpected analysis: %+v", got)
	}
}

func TestAnalyzeQuestFallsBackOnGarbage(t *testing.T) {
	srv := chatServer(t, "I cannot help with that.", http.StatusOK)
	defer srv.Close()

	got := testClient(srv).AnalyzeQuest(context.Background(), "go to the gym")
	if got.Attribute != "STR" || got.XP != 15 || got.Reasoning != "Fallback" {
		t.Fatalf("expected STR keyword fallback, got %+v", got)
	}
}

func TestAnalyzeQuestFallsBackOnBadAttribute(t *testing.T) {
	srv := chatServer(t, `{"xp": 20, "attribute": "AGI", "reasoning": "nope"}`, http.StatusOK)
	defer srv.Close()

	got := testClient(srv).AnalyzeQuest(context.Background(), "read a book")
	if got.Attribute != "INT" || got.Reasoning != "Fallback" {
		t.Fatalf("expected INT keyword fallback, got %+v", got)
	}
}

func TestAnalyzeQuestNoKeyDefaults(t *testing.T) {
	c := &Client{httpc: http.DefaultClient}
	got := c.AnalyzeQuest(context.Background(), "wash dishes")
	if got.Attribute != "DIS" || got.XP != 15 {
		t.Fatalf("expected DIS default, got %+v", got)
	}
}

func TestGeneratePlanParsesProseWrappedArray(t *testing.T) {
	srv := chatServer(t, "Here is your plan:\n[{\"name\":\"Run 1km\",\"xp\":20,\"attribute\":\"STR\"},{\"name\":\"Read 10 pages\",\"xp\":15,\"attribute\":\"INT\"}]", http.StatusOK)
	defer srv.Close()

	got := testClient(srv).GeneratePlan(context.Background(), "fitness", "get fit")
	if len(got) != 2 {
		t.Fatalf("expected 2 habits, got %d", len(got))
	}
	if got[0].Name != "Run 1km" || got[0].Attribute != "STR" {
		t.Fatalf("unexpected first habit: %+v", got[0])
	}
}

func TestGeneratePlanSanitizesEntries(t *testing.T) {
	srv := chatServer(t, `[{"name":"","xp":10,"attribute":"STR"},{"name":"Stretch","xp":0,"attribute":"LUCK"}]`, http.StatusOK)
	defer srv.Close()

	got := testClient(srv).GeneratePlan(context.Background(), "", "")
	if len(got) != 1 {
		t.Fatalf("expected nameless entry dropped, got %d entries", len(got))
	}
	if got[0].XP != 15 || got[0].Attribute != "DIS" {
		t.Fatalf("expected defaults applied, got %+v", got[0])
	}
}

func TestGeneratePlanFallbackSeeds(t *testing.T) {
	c := &Client{httpc: http.DefaultClient}
	got := c.GeneratePlan(context.Background(), "coding and reading", "ship a project")
	if len(got) < 3 {
		t.Fatalf("expected at least 3 fallback habits, got %d", len(got))
	}
	if got[0].Name != "Plan Your Day" {
		t.Fatalf("expected planning seed first, got %+v", got[0])
	}
}

func TestGenerateHeroPlanFallback(t *testing.T) {
	srv := chatServer(t, "", http.StatusInternalServerError)
	defer srv.Close()

	got := testClient(srv).GenerateHeroPlan(context.Background(), HeroProfile{Goal: "run a marathon"})
	if got.FocusArea != "Resilience" {
		t.Fatalf("expected canned plan, got %+v", got)
	}
	if len(got.Roadmap) != 4 {
		t.Fatalf("expected 4 roadmap weeks, got %d", len(got.Roadmap))
	}
}

func TestCompleteMapsUpstreamStatuses(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusPaymentRequired, ErrQuotaExceeded},
	}
	for _, c := range cases {
		srv := chatServer(t, "", c.status)
		_, err := testClient(srv).Complete(context.Background(), "", nil, analyzeTimeout)
		srv.Close()
		if err != c.want {
			t.Fatalf("status %d: got err %v, want %v", c.status, err, c.want)
		}
	}
}
