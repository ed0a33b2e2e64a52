package sheets

import (
	"context"
	"sync"
	"time"
)

// Manager debounces per-user sync requests so a burst of toggles produces
// one full sheet sync instead of one per toggle, then hands the work to the
// retry queue.
type Manager struct {
	queue    *Queue
	debounce time.Duration

	mu     sync.Mutex
	timers map[uint]*time.Timer
}

// NewManager builds a manager over the given queue.
func NewManager(queue *Queue, debounce time.Duration) *Manager {
	if debounce <= 0 {
		debounce = 5 * time.Second
	}
	return &Manager{
		queue:    queue,
		debounce: debounce,
		timers:   make(map[uint]*time.Timer),
	}
}

// Queue exposes the underlying retry queue.
func (m *Manager) Queue() *Queue { return m.queue }

// Schedule arranges for do to run once the user's debounce window closes.
// Calling again inside the window restarts it and replaces the work.
func (m *Manager) Schedule(userID uint, description string, do func(ctx context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.timers[userID]; ok {
		t.Stop()
	}
	m.timers[userID] = time.AfterFunc(m.debounce, func() {
		m.mu.Lock()
		delete(m.timers, userID)
		m.mu.Unlock()
		m.queue.Enqueue(Op{UserID: userID, Description: description, Do: do})
	})
}

// Flush cancels pending debounce timers and enqueues nothing. Used on
// shutdown so timers do not fire into a dead queue.
func (m *Manager) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.timers {
		t.Stop()
		delete(m.timers, id)
	}
}
