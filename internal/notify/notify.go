// Package notify holds the per-session notification list shown as toasts.
package notify

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	Success Type = "success"
	Error   Type = "error"
	Warning Type = "warning"
	Info    Type = "info"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Notification is a single user-facing message
type Notification struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Priority  Priority  `json:"priority"`
	CreatedAt time.Time `json:"createdAt"`
	DismissAt time.Time `json:"dismissAt"`
}

// Notifier accepts notifications. Components that report to the user take a Notifier.
type Notifier interface {
	Notify(n Notification) Notification
}

// Options configures a Sink
type Options struct {
	Capacity   int           // oldest entries are dropped beyond this
	MaxVisible int           // number of entries returned by Visible
	ToastTTL   time.Duration // how long a toast stays active
	Now        func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Capacity <= 0 {
		o.Capacity = 100
	}
	if o.MaxVisible <= 0 {
		o.MaxVisible = 5
	}
	if o.ToastTTL <= 0 {
		o.ToastTTL = 3 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Sink is an append-only, capacity-bounded list of notifications
type Sink struct {
	mu    sync.Mutex
	opts  Options
	items []Notification
}

func NewSink(opts Options) *Sink {
	return &Sink{opts: opts.withDefaults()}
}

// Notify appends n, filling in id, priority and timestamps, and returns the stored entry
func (s *Sink) Notify(n Notification) Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Priority == "" {
		n.Priority = defaultPriority(n.Type)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.opts.Now()
	}
	if n.DismissAt.IsZero() {
		n.DismissAt = n.CreatedAt.Add(s.opts.ToastTTL)
	}
	s.items = append(s.items, n)
	if over := len(s.items) - s.opts.Capacity; over > 0 {
		s.items = slices.Delete(s.items, 0, over)
	}
	return n
}

func defaultPriority(t Type) Priority {
	switch t {
	case Error:
		return PriorityHigh
	case Warning:
		return PriorityNormal
	default:
		return PriorityLow
	}
}

// All returns every retained notification, oldest first
func (s *Sink) All() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Len returns the number of retained notifications
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Visible returns at most MaxVisible of the newest notifications, newest first
func (s *Sink) Visible() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newest(s.items, s.opts.MaxVisible, func(Notification) bool { return true })
}

// Active returns the visible toasts that have not been dismissed at the current time
func (s *Sink) Active() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.opts.Now()
	return newest(s.items, s.opts.MaxVisible, func(n Notification) bool { return now.Before(n.DismissAt) })
}

func newest(items []Notification, limit int, keep func(Notification) bool) []Notification {
	out := make([]Notification, 0, limit)
	for i := len(items) - 1; i >= 0 && len(out) < limit; i-- {
		if keep(items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}

// Last returns the most recent notification
func (s *Sink) Last() (Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return Notification{}, false
	}
	return s.items[len(s.items)-1], true
}
