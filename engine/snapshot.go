package engine

import (
	"time"

	"github.com/habitmaster/habitmaster/models"
)

// SnapshotHabit is the trimmed habit projection carried by exports.
type SnapshotHabit struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Goal int    `json:"goal"`
}

// Snapshot is the denormalized projection consumed by the sheet syncer, CSV
// download, and the coach context builder.
type Snapshot struct {
	Habits      []SnapshotHabit          `json:"habits"`
	Completions []models.HabitCompletion `json:"completions"`
	Metrics     []models.DailyMetric     `json:"metrics"`
	Streak      Streak                   `json:"streak"`
	ExportedAt  time.Time                `json:"exportedAt"`
}

// Snapshot projects the engine's collections into the flat export structure.
// Pure projection, no side effects.
func (e *Engine) Snapshot() Snapshot {
	habits := make([]SnapshotHabit, 0, len(e.habits))
	for _, h := range e.habits {
		habits = append(habits, SnapshotHabit{ID: h.ID, Name: h.Name, Goal: h.Goal})
	}

	completions := make([]models.HabitCompletion, len(e.completions))
	copy(completions, e.completions)
	metrics := make([]models.DailyMetric, len(e.metrics))
	copy(metrics, e.metrics)

	return Snapshot{
		Habits:      habits,
		Completions: completions,
		Metrics:     metrics,
		Streak:      e.Streak(),
		ExportedAt:  e.now(),
	}
}
