package engine

import "time"

// streakWindowDays bounds the backward scan: today plus the preceding 364.
const streakWindowDays = 365

// Streak scans up to a year back from today and returns the current and best
// consecutive-day streaks. A day counts as complete only when every habit in
// the current list has a completion for it, including days before a habit
// was created. The current streak is the unbroken run ending today; if today
// itself is incomplete the current streak is 0 no matter what lies deeper in
// the scan, though those runs still count toward best.
func (e *Engine) Streak() Streak {
	if len(e.habits) == 0 {
		return Streak{}
	}

	now := e.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var current, best, temp int
	broken := false
	for i := 0; i < streakWindowDays; i++ {
		key := DateKey(today.AddDate(0, 0, -i))

		allDone := true
		for _, h := range e.habits {
			if !e.cidx.Has(h.ID, key) {
				allDone = false
				break
			}
		}

		if allDone {
			temp++
			if !broken {
				current = temp
			}
			continue
		}

		broken = true
		if temp > best {
			best = temp
		}
		temp = 0
	}
	if temp > best {
		best = temp
	}

	return Streak{Current: current, Best: best}
}
