package sheets

import (
	"fmt"
	"sort"

	"github.com/habitmaster/habitmaster/engine"
)

// Tab names created on every linked spreadsheet.
const (
	TabSummary     = "Summary"
	TabHabits      = "Habits"
	TabCompletions = "Completions"
	TabWellness    = "Wellness"
)

// timelineDays caps the completion and wellness timelines written to a sheet.
const timelineDays = 90

// DefaultTabs lists the tabs in creation order.
func DefaultTabs() []string {
	return []string{TabSummary, TabHabits, TabCompletions, TabWellness}
}

// ColumnLetter converts a zero-based column index to its A1 letter (0 -> A,
// 25 -> Z, 26 -> AA).
func ColumnLetter(index int) string {
	letter := ""
	for index >= 0 {
		letter = string(rune('A'+index%26)) + letter
		index = index/26 - 1
	}
	return letter
}

// MissingHeaders returns habit names not yet present in the header row,
// preserving habit order.
func MissingHeaders(existing []string, habitNames []string) []string {
	present := make(map[string]struct{}, len(existing))
	for _, h := range existing {
		present[h] = struct{}{}
	}
	var missing []string
	for _, name := range habitNames {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// SummaryRows renders the Summary tab from a snapshot.
func SummaryRows(snap engine.Snapshot) [][]interface{} {
	return [][]interface{}{
		{"HabitMaster Dashboard"},
		{"Last Synced", snap.ExportedAt.Format("Monday, January 2, 2006")},
		{""},
		{"Quick Stats"},
		{"Current Streak", fmt.Sprintf("%d days", snap.Streak.Current)},
		{"Best Streak", fmt.Sprintf("%d days", snap.Streak.Best)},
		{"Total Habits", len(snap.Habits)},
		{"Total Completions", len(snap.Completions)},
	}
}

// HabitRows renders the Habits tab: one row per habit with its completion
// total and 30-day rate.
func HabitRows(snap engine.Snapshot) [][]interface{} {
	rows := [][]interface{}{
		{"Habit Name", "Goal %", "Total Completions", "Completion Rate"},
	}
	counts := make(map[uint]int)
	for _, c := range snap.Completions {
		counts[c.HabitID]++
	}
	for _, h := range snap.Habits {
		count := counts[h.ID]
		rate := "0%"
		if count > 0 {
			rate = fmt.Sprintf("%d%%", count*100/30)
		}
		rows = append(rows, []interface{}{h.Name, fmt.Sprintf("%d%%", h.Goal), count, rate})
	}
	return rows
}

// CompletionRows renders the Completions tab: a date-by-habit matrix of the
// most recent timelineDays distinct completion dates, newest first.
func CompletionRows(snap engine.Snapshot) [][]interface{} {
	header := []interface{}{"Date"}
	for _, h := range snap.Habits {
		header = append(header, h.Name)
	}
	rows := [][]interface{}{header}

	seen := make(map[string]struct{})
	var dates []string
	for _, c := range snap.Completions {
		if _, ok := seen[c.CompletionDate]; !ok {
			seen[c.CompletionDate] = struct{}{}
			dates = append(dates, c.CompletionDate)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	if len(dates) > timelineDays {
		dates = dates[:timelineDays]
	}

	done := make(map[uint]map[string]struct{})
	for _, c := range snap.Completions {
		if done[c.HabitID] == nil {
			done[c.HabitID] = make(map[string]struct{})
		}
		done[c.HabitID][c.CompletionDate] = struct{}{}
	}

	for _, date := range dates {
		row := []interface{}{date}
		for _, h := range snap.Habits {
			if _, ok := done[h.ID][date]; ok {
				row = append(row, "✅")
			} else {
				row = append(row, "❌")
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// WellnessRows renders the Wellness tab: mood and sleep per date, newest
// first, capped at timelineDays.
func WellnessRows(snap engine.Snapshot) [][]interface{} {
	rows := [][]interface{}{
		{"Date", "Mood (1-5)", "Sleep (hours)"},
	}
	metrics := append(snap.Metrics[:0:0], snap.Metrics...)
	sort.Slice(metrics, func(i, j int) bool {
		return metrics[i].MetricDate > metrics[j].MetricDate
	})
	if len(metrics) > timelineDays {
		metrics = metrics[:timelineDays]
	}
	for _, m := range metrics {
		mood := "-"
		if m.Mood != nil {
			mood = moodEmoji(*m.Mood)
		}
		sleep := "-"
		if m.SleepHours != nil {
			sleep = fmt.Sprintf("%gh", *m.SleepHours)
		}
		rows = append(rows, []interface{}{m.MetricDate, mood, sleep})
	}
	return rows
}

// SnapshotRanges assembles the full four-tab batchUpdate payload.
func SnapshotRanges(snap engine.Snapshot) []RangeValues {
	return []RangeValues{
		{Range: TabSummary + "!A1", Values: SummaryRows(snap)},
		{Range: TabHabits + "!A1", Values: HabitRows(snap)},
		{Range: TabCompletions + "!A1", Values: CompletionRows(snap)},
		{Range: TabWellness + "!A1", Values: WellnessRows(snap)},
	}
}

func moodEmoji(mood int) string {
	emojis := []string{"", "😤", "😔", "😐", "😊", "🤩"}
	if mood >= 1 && mood < len(emojis) {
		return emojis[mood]
	}
	return fmt.Sprint(mood)
}
