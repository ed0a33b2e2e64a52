// Package engine derives indices and statistics from one user's habit data.
// Every operation is a synchronous, pure function of the three collections
// passed to New; persistence stays with the caller, which executes the
// mutation intents the engine returns.
package engine

import (
	"time"

	"github.com/habitmaster/habitmaster/models"
)

// DateKeyLayout is the calendar-day serialization used for completions and
// metrics. Keys are derived in the local timezone of the supplied time value.
const DateKeyLayout = "2006-01-02"

// DateKey returns the YYYY-MM-DD key for t in t's own location.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// CompletionIndex maps habit id to the set of date keys the habit was done on.
type CompletionIndex map[uint]map[string]struct{}

// Has reports whether the habit has a completion on the given date key.
func (ci CompletionIndex) Has(habitID uint, dateKey string) bool {
	days, ok := ci[habitID]
	if !ok {
		return false
	}
	_, ok = days[dateKey]
	return ok
}

// MetricIndex maps date key to that day's wellness record.
type MetricIndex map[string]models.DailyMetric

// BuildCompletionIndex builds the habit->dates lookup in O(n). Input order is
// irrelevant and an empty input yields an empty index.
func BuildCompletionIndex(completions []models.HabitCompletion) CompletionIndex {
	idx := make(CompletionIndex)
	for _, c := range completions {
		days, ok := idx[c.HabitID]
		if !ok {
			days = make(map[string]struct{})
			idx[c.HabitID] = days
		}
		days[c.CompletionDate] = struct{}{}
	}
	return idx
}

// BuildMetricIndex builds the date->metric lookup. Duplicate date keys should
// not occur, but when they do the last record wins.
func BuildMetricIndex(metrics []models.DailyMetric) MetricIndex {
	idx := make(MetricIndex, len(metrics))
	for _, m := range metrics {
		idx[m.MetricDate] = m
	}
	return idx
}

// MutationKind distinguishes the persistence intents Toggle emits.
type MutationKind int

const (
	// CreateCompletion asks the caller to insert a completion record.
	CreateCompletion MutationKind = iota
	// DeleteCompletion asks the caller to remove a completion record.
	DeleteCompletion
)

// Mutation is the persistence intent produced by an optimistic local toggle.
type Mutation struct {
	Kind    MutationKind
	HabitID uint
	DateKey string
}

// MetricField selects which wellness value an upsert touches.
type MetricField string

const (
	MetricMood  MetricField = "mood"
	MetricSleep MetricField = "sleep_hours"
)

// Streak is the derived current/best consecutive-day pair. Never persisted.
type Streak struct {
	Current int `json:"current"`
	Best    int `json:"best"`
}

// Engine holds one session's collections and their lookup indices. It is not
// safe for concurrent use; construct one per request.
type Engine struct {
	habits      []models.Habit
	completions []models.HabitCompletion
	metrics     []models.DailyMetric
	cidx        CompletionIndex
	midx        MetricIndex
	now         func() time.Time
}

// New builds an engine over the given user-scoped collections.
func New(habits []models.Habit, completions []models.HabitCompletion, metrics []models.DailyMetric) *Engine {
	return &Engine{
		habits:      habits,
		completions: completions,
		metrics:     metrics,
		cidx:        BuildCompletionIndex(completions),
		midx:        BuildMetricIndex(metrics),
		now:         time.Now,
	}
}

// WithClock overrides the engine's notion of "now". Used by tests and by
// callers that need a fixed export timestamp.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Habits returns the habit list the engine was built over.
func (e *Engine) Habits() []models.Habit { return e.habits }

// IsCompleted reports whether the habit was done on the given date. An
// unknown habit id is simply not completed, never an error.
func (e *Engine) IsCompleted(habitID uint, date time.Time) bool {
	return e.cidx.Has(habitID, DateKey(date))
}

// Toggle flips the completion state for (habitID, date) in the in-memory
// index and returns the matching persistence intent. The local mutation is
// optimistic; the caller decides how to reconcile a failed remote write.
func (e *Engine) Toggle(habitID uint, date time.Time) Mutation {
	key := DateKey(date)
	if e.cidx.Has(habitID, key) {
		delete(e.cidx[habitID], key)
		kept := e.completions[:0]
		for _, c := range e.completions {
			if !(c.HabitID == habitID && c.CompletionDate == key) {
				kept = append(kept, c)
			}
		}
		e.completions = kept
		return Mutation{Kind: DeleteCompletion, HabitID: habitID, DateKey: key}
	}

	days, ok := e.cidx[habitID]
	if !ok {
		days = make(map[string]struct{})
		e.cidx[habitID] = days
	}
	days[key] = struct{}{}
	e.completions = append(e.completions, models.HabitCompletion{HabitID: habitID, CompletionDate: key})
	return Mutation{Kind: CreateCompletion, HabitID: habitID, DateKey: key}
}

// Metric returns the wellness record for the date, if any.
func (e *Engine) Metric(date time.Time) (models.DailyMetric, bool) {
	m, ok := e.midx[DateKey(date)]
	return m, ok
}

// UpsertMetric merges value into the record for the date, creating it when
// absent. The untouched field keeps its prior value.
func (e *Engine) UpsertMetric(date time.Time, field MetricField, value float64) models.DailyMetric {
	key := DateKey(date)
	m, ok := e.midx[key]
	if !ok {
		m = models.DailyMetric{MetricDate: key}
	}

	switch field {
	case MetricMood:
		mood := int(value)
		m.Mood = &mood
	case MetricSleep:
		sleep := value
		m.SleepHours = &sleep
	}

	e.midx[key] = m
	replaced := false
	for i := range e.metrics {
		if e.metrics[i].MetricDate == key {
			e.metrics[i] = m
			replaced = true
			break
		}
	}
	if !replaced {
		e.metrics = append(e.metrics, m)
	}
	return m
}
