// Package notify holds the single-slot, auto-expiring user notice.
package notify

import (
	"sync"
	"time"
)

// Kind classifies a notice.
type Kind string

const (
	KindError   Kind = "error"
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
)

// DefaultDuration is how long a notice stays up unless superseded.
const DefaultDuration = 4 * time.Second

// Message is one notice. IDs increase monotonically per Surface.
type Message struct {
	ID   uint64
	Text string
	Kind Kind
}

// Scheduler runs f once after d.
type Scheduler func(d time.Duration, f func())

func afterFunc(d time.Duration, f func()) { time.AfterFunc(d, f) }

// Surface holds at most one live message; newer messages replace older ones.
type Surface struct {
	mu       sync.Mutex
	counter  uint64
	current  *Message
	duration time.Duration
	schedule Scheduler
	watchers []func(*Message)
}

// Option configures a Surface.
type Option func(*Surface)

// WithDuration overrides DefaultDuration for Show.
func WithDuration(d time.Duration) Option { return func(s *Surface) { s.duration = d } }

// WithScheduler overrides the timer used for auto-clear.
func WithScheduler(fn Scheduler) Option { return func(s *Surface) { s.schedule = fn } }

// New constructs an empty Surface.
func New(opts ...Option) *Surface {
	s := &Surface{duration: DefaultDuration, schedule: afterFunc}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Watch registers fn to be called with the new message (nil when cleared)
// on every change. fn runs outside the surface lock.
func (s *Surface) Watch(fn func(*Message)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

// Show replaces the current message and schedules its auto-clear.
func (s *Surface) Show(text string, kind Kind) Message {
	return s.ShowFor(text, kind, s.duration)
}

// ShowFor is Show with an explicit lifetime; d <= 0 keeps the message until replaced or cleared.
func (s *Surface) ShowFor(text string, kind Kind, d time.Duration) Message {
	s.mu.Lock()
	s.counter++
	m := Message{ID: s.counter, Text: text, Kind: kind}
	s.current = &m
	watchers := s.watchers
	s.mu.Unlock()

	notifyAll(watchers, &m)
	if d > 0 {
		id := m.ID
		s.schedule(d, func() { s.expire(id) })
	}
	return m
}

// Clear empties the surface unconditionally.
func (s *Surface) Clear() {
	s.mu.Lock()
	s.current = nil
	watchers := s.watchers
	s.mu.Unlock()
	notifyAll(watchers, nil)
}

// Current returns the live message, if any.
func (s *Surface) Current() (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Message{}, false
	}
	return *s.current, true
}

// expire clears the surface only if message id is still the live one.
func (s *Surface) expire(id uint64) {
	s.mu.Lock()
	if s.current == nil || s.current.ID != id {
		s.mu.Unlock()
		return
	}
	s.current = nil
	watchers := s.watchers
	s.mu.Unlock()
	notifyAll(watchers, nil)
}

func notifyAll(watchers []func(*Message), m *Message) {
	for _, w := range watchers {
		if m == nil {
			w(nil)
			continue
		}
		cp := *m
		w(&cp)
	}
}
