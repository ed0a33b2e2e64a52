package ai

import (
	"strings"
	"testing"

	"github.com/habitmaster/habitmaster/engine"
)

func TestCoachSystemPromptInlinesStats(t *testing.T) {
	prompt := CoachSystemPrompt(engine.CoachContext{
		TotalHabits:       2,
		HabitNames:        []string{"Run", "Read"},
		Streak:            engine.Streak{Current: 3, Best: 9},
		RecentCompletions: 11,
		WeeklyRate:        79,
		MonthlyRate:       64,
		AvgMood:           4.2,
		AvgSleep:          7.5,
		BestHabit:         "Run",
		WorstHabit:        "Read",
	})

	for _, want := range []string{
		"Total habits: 2",
		"Habits: Run, Read",
		"Current streak: 3 days",
		"Best streak: 9 days",
		"Average mood (7 days): 4.2",
		"Average sleep (7 days): 7.5 hours",
		"Completion rate (7 days): 79%",
		"Monthly rate: 64%",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestCoachSystemPromptEmptyData(t *testing.T) {
	prompt := CoachSystemPrompt(engine.CoachContext{})
	for _, want := range []string{"Habits: None", "Average mood (7 days): N/A", "Most consistent habit: N/A"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}
