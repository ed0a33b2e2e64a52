package engine

import (
	"math"
	"time"
)

// CoachContext is the denormalized statistics block handed to the AI coach
// and to the dashboard endpoint.
type CoachContext struct {
	TotalHabits       int      `json:"total_habits"`
	HabitNames        []string `json:"habit_names"`
	Streak            Streak   `json:"streak"`
	RecentCompletions int      `json:"recent_completions"`
	WeeklyRate        int      `json:"weekly_rate"`
	MonthlyRate       int      `json:"monthly_rate"`
	AvgMood           float64  `json:"avg_mood"`
	AvgSleep          float64  `json:"avg_sleep"`
	BestHabit         string   `json:"best_habit"`
	WorstHabit        string   `json:"worst_habit"`
}

// windowKeys returns the date keys for today and the preceding days-1 days.
func (e *Engine) windowKeys(days int) []string {
	now := e.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	keys := make([]string, 0, days)
	for i := 0; i < days; i++ {
		keys = append(keys, DateKey(today.AddDate(0, 0, -i)))
	}
	return keys
}

// CompletionsInWindow counts completion records across all habits in the
// last `days` days, today inclusive.
func (e *Engine) CompletionsInWindow(days int) int {
	count := 0
	for _, key := range e.windowKeys(days) {
		for _, h := range e.habits {
			if e.cidx.Has(h.ID, key) {
				count++
			}
		}
	}
	return count
}

// CompletionRate returns the percentage of (habit, day) slots completed over
// the window, rounded to the nearest integer. No habits means 0.
func (e *Engine) CompletionRate(days int) int {
	slots := len(e.habits) * days
	if slots == 0 {
		return 0
	}
	done := e.CompletionsInWindow(days)
	return int(math.Round(float64(done) / float64(slots) * 100))
}

// AvgMood averages the mood values recorded in the window; days without a
// mood are skipped. Returns 0 when nothing was recorded.
func (e *Engine) AvgMood(days int) float64 {
	var sum float64
	n := 0
	for _, key := range e.windowKeys(days) {
		if m, ok := e.midx[key]; ok && m.Mood != nil {
			sum += float64(*m.Mood)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Round(sum/float64(n)*10) / 10
}

// AvgSleep averages the sleep hours recorded in the window.
func (e *Engine) AvgSleep(days int) float64 {
	var sum float64
	n := 0
	for _, key := range e.windowKeys(days) {
		if m, ok := e.midx[key]; ok && m.SleepHours != nil {
			sum += *m.SleepHours
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Round(sum/float64(n)*10) / 10
}

// habitCounts tallies per-habit completions over the window.
func (e *Engine) habitCounts(days int) map[uint]int {
	counts := make(map[uint]int, len(e.habits))
	keys := e.windowKeys(days)
	for _, h := range e.habits {
		for _, key := range keys {
			if e.cidx.Has(h.ID, key) {
				counts[h.ID]++
			}
		}
	}
	return counts
}

// BestHabit names the most completed habit in the window, "" when there are
// no habits. Ties keep the earlier habit in sort order.
func (e *Engine) BestHabit(days int) string {
	counts := e.habitCounts(days)
	best := ""
	bestCount := -1
	for _, h := range e.habits {
		if counts[h.ID] > bestCount {
			best = h.Name
			bestCount = counts[h.ID]
		}
	}
	return best
}

// WorstHabit names the least completed habit in the window.
func (e *Engine) WorstHabit(days int) string {
	counts := e.habitCounts(days)
	worst := ""
	worstCount := math.MaxInt
	for _, h := range e.habits {
		if counts[h.ID] < worstCount {
			worst = h.Name
			worstCount = counts[h.ID]
		}
	}
	return worst
}

// Context assembles the full statistics block: 7-day window for activity and
// wellness, 30-day window for the monthly rate and habit ranking.
func (e *Engine) Context() CoachContext {
	names := make([]string, 0, len(e.habits))
	for _, h := range e.habits {
		names = append(names, h.Name)
	}
	return CoachContext{
		TotalHabits:       len(e.habits),
		HabitNames:        names,
		Streak:            e.Streak(),
		RecentCompletions: e.CompletionsInWindow(7),
		WeeklyRate:        e.CompletionRate(7),
		MonthlyRate:       e.CompletionRate(30),
		AvgMood:           e.AvgMood(7),
		AvgSleep:          e.AvgSleep(7),
		BestHabit:         e.BestHabit(30),
		WorstHabit:        e.WorstHabit(30),
	}
}
