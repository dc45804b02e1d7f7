// Package notify is the single-slot outcome feed behind the snackbar.
// Posting replaces whatever is displayed; nothing queues.
package notify

import (
	"sync"
	"time"
)

// DefaultTTL is how long a notification stays visible before auto-hiding.
const DefaultTTL = 4 * time.Second

// Severity classifies a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is one transient outcome message.
type Notification struct {
	Message  string
	Severity Severity
	// Seq distinguishes this posting from earlier ones so a stale expiry
	// timer cannot clear a newer message.
	Seq uint64
}

// Feed holds at most one active notification.
type Feed struct {
	mu      sync.Mutex
	current *Notification
	expiry  time.Time
	seq     uint64
	ttl     time.Duration
	now     func() time.Time
}

// New returns a feed with the default 4s TTL.
func New() *Feed {
	return &Feed{ttl: DefaultTTL, now: time.Now}
}

// NewWithClock is for tests that control time.
func NewWithClock(ttl time.Duration, now func() time.Time) *Feed {
	return &Feed{ttl: ttl, now: now}
}

// Success posts a success message, replacing the current slot.
func (f *Feed) Success(msg string) Notification {
	return f.post(msg, SeveritySuccess)
}

// Error posts an error message, replacing the current slot.
func (f *Feed) Error(msg string) Notification {
	return f.post(msg, SeverityError)
}

func (f *Feed) post(msg string, sev Severity) Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	n := Notification{Message: msg, Severity: sev, Seq: f.seq}
	f.current = &n
	f.expiry = f.now().Add(f.ttl)
	return n
}

// Active returns the current notification, or nil once it expired or was
// dismissed.
func (f *Feed) Active() *Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil || f.now().After(f.expiry) {
		f.current = nil
		return nil
	}
	n := *f.current
	return &n
}

// Dismiss clears the slot early.
func (f *Feed) Dismiss() {
	f.mu.Lock()
	f.current = nil
	f.mu.Unlock()
}

// Expire clears the slot if seq still identifies the displayed message.
// Called by the expiry timer; a newer posting wins.
func (f *Feed) Expire(seq uint64) {
	f.mu.Lock()
	if f.current != nil && f.current.Seq == seq {
		f.current = nil
	}
	f.mu.Unlock()
}

// TTL returns the feed's expiry duration, for scheduling timers.
func (f *Feed) TTL() time.Duration {
	return f.ttl
}
