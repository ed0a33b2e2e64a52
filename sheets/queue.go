package sheets

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/habitmaster/habitmaster/utils"
)

// Op is one pending sheet write. Do must be safe to call repeatedly.
type Op struct {
	UserID      uint
	Description string
	Do          func(ctx context.Context) error

	attempts int
	runAt    time.Time
}

// Queue is a pending-operation log for sheet writes. Failed operations are
// retried with exponential backoff instead of being dropped on first error,
// so local state and the remote sheet reconverge after transient failures.
// Reauth failures are terminal; retrying cannot fix a revoked token.
type Queue struct {
	mu         sync.Mutex
	ops        []*Op
	maxRetries int
	baseDelay  time.Duration
	wake       chan struct{}
}

// NewQueue builds a queue that gives each operation maxRetries attempts.
func NewQueue(maxRetries int) *Queue {
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &Queue{
		maxRetries: maxRetries,
		baseDelay:  2 * time.Second,
		wake:       make(chan struct{}, 1),
	}
}

// Enqueue schedules an operation for immediate execution.
func (q *Queue) Enqueue(op Op) {
	q.mu.Lock()
	op.runAt = time.Now()
	q.ops = append(q.ops, &op)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Len returns the number of operations still pending.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ops)
}

// Start runs the drain loop until ctx is cancelled.
func (q *Queue) Start(ctx context.Context) {
	go q.loop(ctx)
}

func (q *Queue) loop(ctx context.Context) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.wake:
		case <-ticker.C:
		}
		q.drain(ctx)
	}
}

// drain runs every due operation once, rescheduling failures.
func (q *Queue) drain(ctx context.Context) {
	now := time.Now()
	q.mu.Lock()
	var due []*Op
	var remaining []*Op
	for _, op := range q.ops {
		if op.runAt.After(now) {
			remaining = append(remaining, op)
		} else {
			due = append(due, op)
		}
	}
	q.ops = remaining
	q.mu.Unlock()

	for _, op := range due {
		if ctx.Err() != nil {
			q.requeue(op)
			continue
		}
		err := op.Do(ctx)
		if err == nil {
			continue
		}
		op.attempts++
		if errors.Is(err, ErrNeedsReauth) {
			if utils.Sugar != nil {
				utils.Sugar.Warnf("dropping sheet op %q for user %d: %v", op.Description, op.UserID, err)
			}
			continue
		}
		if op.attempts >= q.maxRetries {
			if utils.Sugar != nil {
				utils.Sugar.Errorf("sheet op %q for user %d failed after %d attempts: %v",
					op.Description, op.UserID, op.attempts, err)
			}
			continue
		}
		// 2s, 4s, 8s, ... between attempts
		op.runAt = time.Now().Add(q.baseDelay << (op.attempts - 1))
		if utils.Sugar != nil {
			utils.Sugar.Warnf("sheet op %q for user %d failed (attempt %d), retrying: %v",
				op.Description, op.UserID, op.attempts, err)
		}
		q.requeue(op)
	}
}

func (q *Queue) requeue(op *Op) {
	q.mu.Lock()
	q.ops = append(q.ops, op)
	q.mu.Unlock()
}
