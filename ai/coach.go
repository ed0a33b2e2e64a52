package ai

import (
	"fmt"
	"strings"

	"github.com/habitmaster/habitmaster/engine"
)

// CoachSystemPrompt renders the coach persona with the user's current habit
// statistics inlined so replies can reference real data.
func CoachSystemPrompt(stats engine.CoachContext) string {
	names := "None"
	if len(stats.HabitNames) > 0 {
		names = strings.Join(stats.HabitNames, ", ")
	}
	avgMood := "N/A"
	if stats.AvgMood > 0 {
		avgMood = fmt.Sprintf("%.1f", stats.AvgMood)
	}
	avgSleep := "N/A"
	if stats.AvgSleep > 0 {
		avgSleep = fmt.Sprintf("%.1f", stats.AvgSleep)
	}
	best := stats.BestHabit
	if best == "" {
		best = "N/A"
	}
	worst := stats.WorstHabit
	if worst == "" {
		worst = "N/A"
	}

	context := fmt.Sprintf(`Current user data:
- Total habits: %d
- Habits: %s
- Current streak: %d days
- Best streak: %d days
- Recent completions: %d in last 7 days
- Average mood (7 days): %s
- Average sleep (7 days): %s hours
- Completion rate (7 days): %d%%
- Monthly rate: %d%%
- Most consistent habit: %s
- Needs improvement: %s`,
		stats.TotalHabits, names,
		stats.Streak.Current, stats.Streak.Best,
		stats.RecentCompletions, avgMood, avgSleep,
		stats.WeeklyRate, stats.MonthlyRate,
		best, worst,
	)

	return `You are HabitMaster AI Coach - a friendly, encouraging, and insightful personal habit coach. Your role is to:

1. Analyze the user's habit tracking data and provide personalized insights
2. Celebrate their wins and acknowledge their progress
3. Identify patterns and suggest improvements
4. Provide motivation and accountability
5. Answer questions about habits, wellness, and productivity
6. Give specific, actionable advice based on their data

` + context + `

Guidelines:
- Be warm, supportive, and encouraging
- Use emojis sparingly but effectively
- Keep responses concise but helpful
- Reference their actual data when giving advice
- If they're doing well, celebrate it!
- If they're struggling, be empathetic and offer practical tips
- Focus on progress, not perfection`
}
