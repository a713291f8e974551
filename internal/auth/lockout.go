package auth

import (
	"sync"
	"time"
)

// Lockout counts failed sign-ins per username and blocks a name for a while
// once it reaches the limit.
type Lockout struct {
	mu       sync.Mutex
	failures map[string]int
	until    map[string]time.Time
}

func NewLockout() *Lockout {
	return &Lockout{failures: map[string]int{}, until: map[string]time.Time{}}
}

// Locked reports whether name is blocked at now, and until when.
func (l *Lockout) Locked(name string, now time.Time) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	until, ok := l.until[name]
	if !ok {
		return time.Time{}, false
	}
	if !now.Before(until) {
		delete(l.until, name)
		return time.Time{}, false
	}
	return until, true
}

// Fail records a failed attempt. The limit-th consecutive failure blocks name
// for d and reports true. A limit of 0 or less never blocks.
func (l *Lockout) Fail(name string, limit int, d time.Duration, now time.Time) bool {
	if limit <= 0 {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures[name]++
	if l.failures[name] < limit {
		return false
	}
	delete(l.failures, name)
	l.until[name] = now.Add(d)
	return true
}

// Reset forgets the failures of name after a successful sign-in.
func (l *Lockout) Reset(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.failures, name)
	delete(l.until, name)
}
