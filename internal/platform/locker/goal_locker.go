// Package locker provides process-local mutual exclusion keyed by goal number.
package locker

import "sync"

// GoalLocker tracks which goals are currently being matched in this process.
type GoalLocker struct {
	mu         sync.Mutex
	processing map[string]bool
}

// New creates an empty GoalLocker.
func New() *GoalLocker {
	return &GoalLocker{
		processing: make(map[string]bool),
	}
}

// TryLock marks goalNumber as in progress. It returns false without blocking
// when another worker already holds it.
func (l *GoalLocker) TryLock(goalNumber string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.processing[goalNumber] {
		return false
	}
	l.processing[goalNumber] = true
	return true
}

// IsLocked reports whether goalNumber is currently held.
func (l *GoalLocker) IsLocked(goalNumber string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.processing[goalNumber]
}

// Unlock releases goalNumber.
func (l *GoalLocker) Unlock(goalNumber string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.processing, goalNumber)
}
