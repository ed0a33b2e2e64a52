package engine

import (
	"testing"

	"github.com/habitmaster/habitmaster/models"
)

func TestCompletionRate(t *testing.T) {
	habits := []models.Habit{{ID: 1, Name: "Run"}, {ID: 2, Name: "Read"}}
	today := day("2024-03-15")
	// Habit 1 done every day this week, habit 2 never: 7 of 14 slots.
	e := New(habits, completionsAt(habits[:1], today, 0, 1, 2, 3, 4, 5, 6), nil).
		WithClock(fixedClock("2024-03-15"))

	if got := e.CompletionRate(7); got != 50 {
		t.Fatalf("expected weekly rate 50, got %d", got)
	}
	if got := e.CompletionsInWindow(7); got != 7 {
		t.Fatalf("expected 7 recent completions, got %d", got)
	}
}

func TestCompletionRateNoHabits(t *testing.T) {
	e := New(nil, nil, nil).WithClock(fixedClock("2024-03-15"))
	if got := e.CompletionRate(7); got != 0 {
		t.Fatalf("expected 0 rate with no habits, got %d", got)
	}
}

func TestAverages(t *testing.T) {
	mood4, mood2 := 4, 2
	sleep8 := 8.0
	metrics := []models.DailyMetric{
		{MetricDate: "2024-03-15", Mood: &mood4, SleepHours: &sleep8},
		{MetricDate: "2024-03-14", Mood: &mood2},
		{MetricDate: "2024-01-01", Mood: &mood2}, // outside the window
	}
	e := New(nil, nil, metrics).WithClock(fixedClock("2024-03-15"))

	if got := e.AvgMood(7); got != 3 {
		t.Fatalf("expected avg mood 3, got %v", got)
	}
	if got := e.AvgSleep(7); got != 8 {
		t.Fatalf("expected avg sleep 8, got %v", got)
	}
	if got := e.AvgMood(1000); got == 3 {
		t.Fatalf("wider window should include the January mood, got %v", got)
	}
}

func TestAveragesEmpty(t *testing.T) {
	e := New(nil, nil, nil).WithClock(fixedClock("2024-03-15"))
	if e.AvgMood(7) != 0 || e.AvgSleep(7) != 0 {
		t.Fatal("averages over no data must be 0")
	}
}

func TestBestAndWorstHabit(t *testing.T) {
	habits := []models.Habit{{ID: 1, Name: "Run"}, {ID: 2, Name: "Read"}, {ID: 3, Name: "Meditate"}}
	today := day("2024-03-15")
	completions := append(
		completionsAt(habits[:1], today, 0, 1, 2, 3),
		completionsAt(habits[1:2], today, 0, 1)...,
	)
	e := New(habits, completions, nil).WithClock(fixedClock("2024-03-15"))

	if got := e.BestHabit(30); got != "Run" {
		t.Fatalf("expected best habit Run, got %q", got)
	}
	if got := e.WorstHabit(30); got != "Meditate" {
		t.Fatalf("expected worst habit Meditate, got %q", got)
	}
}

func TestContext(t *testing.T) {
	habits := []models.Habit{{ID: 1, Name: "Run"}}
	today := day("2024-03-15")
	e := New(habits, completionsAt(habits, today, 0, 1, 2), nil).
		WithClock(fixedClock("2024-03-15"))

	ctx := e.Context()
	if ctx.TotalHabits != 1 || len(ctx.HabitNames) != 1 || ctx.HabitNames[0] != "Run" {
		t.Fatalf("unexpected habit summary: %+v", ctx)
	}
	if ctx.Streak.Current != 3 {
		t.Fatalf("expected current streak 3, got %d", ctx.Streak.Current)
	}
	if ctx.RecentCompletions != 3 {
		t.Fatalf("expected 3 recent completions, got %d", ctx.RecentCompletions)
	}
	if ctx.WeeklyRate != 43 { // 3 of 7 slots
		t.Fatalf("expected weekly rate 43, got %d", ctx.WeeklyRate)
	}
}
