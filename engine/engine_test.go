package engine

import (
	"testing"
	"time"

	"github.com/habitmaster/habitmaster/models"
)

func day(key string) time.Time {
	t, err := time.ParseInLocation(DateKeyLayout, key, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

func fixedClock(key string) func() time.Time {
	t := day(key)
	return func() time.Time { return t }
}

func TestBuildCompletionIndex(t *testing.T) {
	completions := []models.HabitCompletion{
		{HabitID: 1, CompletionDate: "2024-01-01"},
		{HabitID: 1, CompletionDate: "2024-01-02"},
		{HabitID: 2, CompletionDate: "2024-01-01"},
	}

	idx := BuildCompletionIndex(completions)

	for _, c := range completions {
		if !idx.Has(c.HabitID, c.CompletionDate) {
			t.Fatalf("expected index to contain (%d, %s)", c.HabitID, c.CompletionDate)
		}
	}
	if idx.Has(1, "2024-01-03") {
		t.Fatal("index reports a completion that was never recorded")
	}
	if idx.Has(99, "2024-01-01") {
		t.Fatal("unknown habit id must not be completed")
	}
}

func TestBuildCompletionIndexEmpty(t *testing.T) {
	idx := BuildCompletionIndex(nil)
	if len(idx) != 0 {
		t.Fatalf("expected empty index, got %d entries", len(idx))
	}
}

func TestBuildMetricIndexLastWins(t *testing.T) {
	mood3, mood5 := 3, 5
	metrics := []models.DailyMetric{
		{MetricDate: "2024-01-01", Mood: &mood3},
		{MetricDate: "2024-01-01", Mood: &mood5},
	}

	idx := BuildMetricIndex(metrics)
	m, ok := idx["2024-01-01"]
	if !ok {
		t.Fatal("expected metric for 2024-01-01")
	}
	if m.Mood == nil || *m.Mood != 5 {
		t.Fatalf("expected last-seen mood 5, got %v", m.Mood)
	}
}

func TestIsCompleted(t *testing.T) {
	e := New(
		[]models.Habit{{ID: 1, Name: "Run"}},
		[]models.HabitCompletion{{HabitID: 1, CompletionDate: "2024-01-02"}},
		nil,
	)

	if !e.IsCompleted(1, day("2024-01-02")) {
		t.Fatal("expected habit 1 completed on 2024-01-02")
	}
	if e.IsCompleted(1, day("2024-01-03")) {
		t.Fatal("habit 1 should not be completed on 2024-01-03")
	}
	if e.IsCompleted(2, day("2024-01-02")) {
		t.Fatal("absent habit must report false, not error")
	}
}

func TestToggleEmitsIntentsAndFlipsState(t *testing.T) {
	e := New([]models.Habit{{ID: 1, Name: "Run"}}, nil, nil)
	d := day("2024-01-02")

	m := e.Toggle(1, d)
	if m.Kind != CreateCompletion || m.HabitID != 1 || m.DateKey != "2024-01-02" {
		t.Fatalf("unexpected create intent: %+v", m)
	}
	if !e.IsCompleted(1, d) {
		t.Fatal("toggle-to-done did not update the index")
	}

	m = e.Toggle(1, d)
	if m.Kind != DeleteCompletion {
		t.Fatalf("expected delete intent, got %+v", m)
	}
	if e.IsCompleted(1, d) {
		t.Fatal("toggle twice must return the habit to its original state")
	}
	if len(e.completions) != 0 {
		t.Fatalf("completion slice not restored, has %d records", len(e.completions))
	}
}

func TestUpsertMetricPartialUpdate(t *testing.T) {
	e := New(nil, nil, nil)
	d := day("2024-01-02")

	e.UpsertMetric(d, MetricMood, 4)
	m := e.UpsertMetric(d, MetricSleep, 7)

	if m.Mood == nil || *m.Mood != 4 {
		t.Fatalf("sleep write clobbered mood: %v", m.Mood)
	}
	if m.SleepHours == nil || *m.SleepHours != 7 {
		t.Fatalf("expected sleep_hours 7, got %v", m.SleepHours)
	}

	got, ok := e.Metric(d)
	if !ok {
		t.Fatal("metric lookup failed after upsert")
	}
	if *got.Mood != 4 || *got.SleepHours != 7 {
		t.Fatalf("stored metric mismatch: %+v", got)
	}
	if len(e.metrics) != 1 {
		t.Fatalf("expected a single metric record, got %d", len(e.metrics))
	}
}

func TestUpsertMetricOverwritesSameField(t *testing.T) {
	e := New(nil, nil, nil)
	d := day("2024-01-02")

	e.UpsertMetric(d, MetricMood, 2)
	m := e.UpsertMetric(d, MetricMood, 5)

	if m.Mood == nil || *m.Mood != 5 {
		t.Fatalf("expected mood 5 after second write, got %v", m.Mood)
	}
	if m.SleepHours != nil {
		t.Fatalf("sleep_hours should stay absent, got %v", *m.SleepHours)
	}
}

func TestSnapshotShape(t *testing.T) {
	habits := []models.Habit{
		{ID: 1, Name: "Run", Goal: 100},
		{ID: 2, Name: "Read", Goal: 80},
	}
	completions := []models.HabitCompletion{
		{HabitID: 1, CompletionDate: "2024-01-02"},
		{HabitID: 2, CompletionDate: "2024-01-02"},
	}
	mood := 4
	metrics := []models.DailyMetric{{MetricDate: "2024-01-02", Mood: &mood}}

	e := New(habits, completions, metrics).WithClock(fixedClock("2024-01-02"))
	snap := e.Snapshot()

	if len(snap.Habits) != 2 || snap.Habits[0].Name != "Run" || snap.Habits[1].Goal != 80 {
		t.Fatalf("unexpected habit projection: %+v", snap.Habits)
	}
	if len(snap.Completions) != 2 || len(snap.Metrics) != 1 {
		t.Fatalf("snapshot dropped records: %d completions, %d metrics", len(snap.Completions), len(snap.Metrics))
	}
	if snap.Streak != e.Streak() {
		t.Fatalf("snapshot streak %+v differs from Streak() %+v", snap.Streak, e.Streak())
	}
	if !snap.ExportedAt.Equal(day("2024-01-02")) {
		t.Fatalf("unexpected exportedAt: %v", snap.ExportedAt)
	}
}
