package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/habitmaster/habitmaster/models"
	"github.com/habitmaster/habitmaster/utils"
)

const (
	analyzeTimeout = 20 * time.Second
	planTimeout    = 25 * time.Second
	heroTimeout    = 25 * time.Second
)

// QuestAnalysis is the game master's verdict on a single habit.
type QuestAnalysis struct {
	XP        int    `json:"xp"`
	Attribute string `json:"attribute"`
	Reasoning string `json:"reasoning"`
}

// PlanHabit is one habit suggestion in a generated plan.
type PlanHabit struct {
	Name      string `json:"name"`
	XP        int    `json:"xp"`
	Attribute string `json:"attribute"`
}

// HeroProfile carries the onboarding answers used to build a hero plan.
type HeroProfile struct {
	Skills      []string `json:"skills"`
	Intensity   int      `json:"intensity"`
	Focus       int      `json:"focus"`
	Motivations []string `json:"motivations"`
	RewardIdea  string   `json:"reward_idea"`
	Goal        string   `json:"goal"`
}

// HeroPlan is the strategic plan returned to a newly-created hero.
type HeroPlan struct {
	Quote struct {
		Text   string `json:"text"`
		Author string `json:"author"`
	} `json:"quote"`
	Advice               string   `json:"advice"`
	YoutubeQueries       []string `json:"youtube_queries"`
	MusicRecommendations []string `json:"music_recommendations"`
	NewsTopics           []string `json:"news_topics"`
	ShortTermGoals       []string `json:"short_term_goals"`
	Roadmap              []struct {
		Week  string `json:"week"`
		Focus string `json:"focus"`
	} `json:"roadmap"`
	FocusArea string `json:"focus_area"`
}

const analyzeSystemPrompt = `You are the Game Master for an RPG habit tracker.
Analyze the user's habit/quest goal and assign it ONE attribute:
- STR (physical fitness)
- INT (learning, coding)
- WIS (meditation, planning)
- CHA (social)
- DIS (discipline, chores)

Also assign XP (10-50).

Return ONLY valid JSON: { "xp": number, "attribute": "Enum", "reasoning": "short string" }`

// AnalyzeQuest classifies a habit name into an attribute and XP value. It
// never fails: any gateway or parse problem yields the deterministic
// keyword fallback.
func (c *Client) AnalyzeQuest(ctx context.Context, questName string) QuestAnalysis {
	raw, err := c.Complete(ctx, "", []Message{
		{Role: "system", Content: analyzeSystemPrompt},
		{Role: "user", Content: `Analyze this quest: "` + questName + `"`},
	}, analyzeTimeout)
	if err != nil {
		if err != ErrNoAPIKey && utils.Sugar != nil {
			utils.Sugar.Warnf("quest analysis failed, using fallback: %v", err)
		}
		return fallbackAnalysis(questName)
	}

	span, ok := ExtractObject(raw)
	if !ok {
		return fallbackAnalysis(questName)
	}
	var out QuestAnalysis
	if err := json.Unmarshal([]byte(span), &out); err != nil {
		return fallbackAnalysis(questName)
	}
	if out.XP <= 0 || !models.ValidAttribute(out.Attribute) {
		return fallbackAnalysis(questName)
	}
	return out
}

func fallbackAnalysis(questName string) QuestAnalysis {
	lower := strings.ToLower(questName)
	attr := string(models.AttrDiscipline)
	if strings.Contains(lower, "run") || strings.Contains(lower, "gym") {
		attr = string(models.AttrStrength)
	}
	if strings.Contains(lower, "read") || strings.Contains(lower, "code") {
		attr = string(models.AttrIntellect)
	}
	return QuestAnalysis{XP: 15, Attribute: attr, Reasoning: "Fallback"}
}

const planSystemPromptFmt = `You are a Habit RPG Game Master.
User skills/interests: %s
Main goal: %s

Generate 4-6 specific daily habits that help achieve this goal while aligning with their skills.
For each habit, assign an attribute [STR, INT, WIS, CHA, DIS] and XP (10-50).

IMPORTANT: Return ONLY a raw JSON array. Do not wrap in markdown code blocks. Do not add explanation.
Example:
[{"name":"Run 1km","xp":20,"attribute":"STR"},{"name":"Read 10 pages","xp":15,"attribute":"INT"}]`

// GeneratePlan produces habit suggestions for the given skills and goal,
// falling back to a keyword-seeded plan on any failure.
func (c *Client) GeneratePlan(ctx context.Context, skills, goal string) []PlanHabit {
	raw, err := c.Complete(ctx, "", []Message{
		{Role: "system", Content: fmt.Sprintf(planSystemPromptFmt, skills, goal)},
		{Role: "user", Content: "Generate quests now."},
	}, planTimeout)
	if err != nil {
		if err != ErrNoAPIKey && utils.Sugar != nil {
			utils.Sugar.Warnf("plan generation failed, using fallback: %v", err)
		}
		return fallbackPlan(skills)
	}

	var out []PlanHabit
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		span, ok := ExtractArray(raw)
		if !ok {
			return fallbackPlan(skills)
		}
		if err := json.Unmarshal([]byte(span), &out); err != nil {
			return fallbackPlan(skills)
		}
	}
	cleaned := out[:0]
	for _, h := range out {
		if h.Name == "" {
			continue
		}
		if h.XP <= 0 {
			h.XP = 15
		}
		if !models.ValidAttribute(h.Attribute) {
			h.Attribute = string(models.AttrDiscipline)
		}
		cleaned = append(cleaned, h)
	}
	if len(cleaned) == 0 {
		return fallbackPlan(skills)
	}
	return cleaned
}

func fallbackPlan(skills string) []PlanHabit {
	lower := strings.ToLower(skills)
	habits := []PlanHabit{{Name: "Plan Your Day", XP: 10, Attribute: string(models.AttrWisdom)}}
	if strings.Contains(lower, "fitness") {
		habits = append(habits, PlanHabit{Name: "Workout 20m", XP: 20, Attribute: string(models.AttrStrength)})
	}
	if strings.Contains(lower, "coding") {
		habits = append(habits, PlanHabit{Name: "Write Code", XP: 20, Attribute: string(models.AttrIntellect)})
	}
	if strings.Contains(lower, "reading") {
		habits = append(habits, PlanHabit{Name: "Read Chapter", XP: 15, Attribute: string(models.AttrIntellect)})
	}
	if len(habits) < 3 {
		habits = append(habits, PlanHabit{Name: "Drink Water", XP: 10, Attribute: string(models.AttrDiscipline)})
	}
	return habits
}

const heroSystemPromptFmt = `You are an elite RPG life architect and data analyst.
Analyze this user profile to build a high-level strategic master plan.

USER PROFILE:
- Skills: %s
- Intensity level (0-100): %d
- Focus style (0-100): %d (low=generalist, high=specialist)
- Motivations: %s
- Real-world reward: %s
- MAIN QUEST: "%s"

Generate a comprehensive JSON response (NO MARKDOWN) with:
1. "quote": { "text": "Powerful quote aligning with their goal", "author": "Author" }
2. "advice": "Specific strategic advice (max 25 words)."
3. "short_term_goals": [array of 3 immediate, specific tasks to do THIS WEEK]
4. "roadmap": [array of 4 objects { "week": "Week 1", "focus": "Theme" } covering the first month]
5. "youtube_queries": [3 specific search terms for learning/growth]
6. "music_recommendations": [3 specific genres/artists for their workflow]
7. "news_topics": [3 specific topics to follow for news]
8. "focus_area": "One powerful word theme"

Return ONLY valid JSON.`

// GenerateHeroPlan builds a strategic plan from the onboarding profile,
// returning a canned plan when the gateway is unavailable.
func (c *Client) GenerateHeroPlan(ctx context.Context, profile HeroProfile) HeroPlan {
	reward := profile.RewardIdea
	if reward == "" {
		reward = "None"
	}
	prompt := fmt.Sprintf(heroSystemPromptFmt,
		strings.Join(profile.Skills, ", "),
		profile.Intensity,
		profile.Focus,
		strings.Join(profile.Motivations, ", "),
		reward,
		profile.Goal,
	)

	raw, err := c.Complete(ctx, "", []Message{
		{Role: "system", Content: prompt},
		{Role: "user", Content: "Architect my destiny."},
	}, heroTimeout)
	if err != nil {
		if err != ErrNoAPIKey && utils.Sugar != nil {
			utils.Sugar.Warnf("hero plan generation failed, using fallback: %v", err)
		}
		return fallbackHeroPlan()
	}

	span, ok := ExtractObject(raw)
	if !ok {
		span = raw
	}
	var out HeroPlan
	if err := json.Unmarshal([]byte(span), &out); err != nil {
		return fallbackHeroPlan()
	}
	if out.Advice == "" && out.FocusArea == "" {
		return fallbackHeroPlan()
	}
	return out
}

func fallbackHeroPlan() HeroPlan {
	var p HeroPlan
	p.Quote.Text = "Fall seven times, stand up eight."
	p.Quote.Author = "Japanese Proverb"
	p.Advice = "Keep moving forward. Consistency is key."
	p.YoutubeQueries = []string{"Motivation", "Discipline"}
	p.MusicRecommendations = []string{"Focus Flow", "Deep House", "Ambient"}
	p.NewsTopics = []string{"Self Improvement", "Tech", "Science"}
	p.ShortTermGoals = []string{"Organize Workspace", "Set Alarm", "Walk 10m"}
	p.Roadmap = []struct {
		Week  string `json:"week"`
		Focus string `json:"focus"`
	}{
		{Week: "Week 1", Focus: "Start"},
		{Week: "Week 2", Focus: "Build"},
		{Week: "Week 3", Focus: "Grow"},
		{Week: "Week 4", Focus: "Scale"},
	}
	p.FocusArea = "Resilience"
	return p
}
