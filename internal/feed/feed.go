// Package feed holds the notification feed: a capped, append-only record
// of rule firings and evaluation-time failures, exposed for polling.
package feed

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notification records one firing or failure. RuleID is a weak reference:
// the notification outlives deletion of the rule that produced it.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	RuleID    string    `json:"rule_id,omitempty"`
	Failure   bool      `json:"failure,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Feed is the only component allowed to mutate the notification queue.
// Entries are kept in creation order; once the retention bound is exceeded
// the oldest entries are evicted first.
type Feed struct {
	mu        sync.Mutex
	entries   []Notification
	retention int
}

// NewFeed creates a feed bounded to retention entries (minimum 1).
func NewFeed(retention int) *Feed {
	if retention < 1 {
		retention = 1
	}
	return &Feed{retention: retention}
}

// Append records a successful firing.
func (f *Feed) Append(ruleID, message string) Notification {
	return f.append(ruleID, message, false)
}

// AppendFailure records an evaluation-time or execution failure.
func (f *Feed) AppendFailure(ruleID, message string) Notification {
	return f.append(ruleID, message, true)
}

func (f *Feed) append(ruleID, message string, failure bool) Notification {
	n := Notification{
		ID:        uuid.New().String(),
		Message:   message,
		RuleID:    ruleID,
		Failure:   failure,
		Timestamp: time.Now(),
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, n)
	if over := len(f.entries) - f.retention; over > 0 {
		f.entries = append([]Notification(nil), f.entries[over:]...)
	}
	return n
}

// List returns notifications in creation order, newest last. A limit of 0
// (or negative) returns everything retained; otherwise the newest limit
// entries are returned.
func (f *Feed) List(limit int) []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := f.entries
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	out := make([]Notification, len(entries))
	copy(out, entries)
	return out
}

// Len reports how many notifications are currently retained.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}
