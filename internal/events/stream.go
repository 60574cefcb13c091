package events

import (
	"sync"
	"time"
)

// Logger defines the logging interface used by the Stream.
type Logger interface {
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Error(string, ...any) {}

// Handler receives events from a Stream.
//
// Handlers run on the publishing goroutine and block the owner of the scene
// graph while they run. Anything slow (network, disk) must be handed off to
// another goroutine by the handler itself.
type Handler func(Event)

type subscriber struct {
	id      uint64
	handler Handler
}

// Stream is an ordered, synchronous event channel.
//
// Publish assigns sequence numbers and delivers each event to every current
// subscriber, in subscription order, before moving on to the next event.
//
// Subscribe and Publish are safe to call from multiple goroutines; delivery is
// still strictly FIFO because only one goroutine drains the queue at a time.
type Stream struct {
	mu          sync.Mutex
	subscribers []subscriber
	nextID      uint64
	seq         uint64
	queue       []Event
	dispatching bool

	logger Logger
	now    func() time.Time
}

// NewStream creates an empty event stream.
func NewStream() *Stream {
	return &Stream{
		logger: noopLogger{},
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetLogger sets the logger used to report recovered handler panics.
func (s *Stream) SetLogger(logger Logger) {
	s.mu.Lock()
	s.logger = logger
	s.mu.Unlock()
}

// Subscribe registers a handler and returns a function that removes it.
// The returned function is idempotent.
func (s *Stream) Subscribe(handler Handler) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subscribers = append(s.subscribers, subscriber{id: id, handler: handler})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(id) })
	}
}

func (s *Stream) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subscribers {
		if sub.id == id {
			s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
			return
		}
	}
}

// SubscriberCount returns the number of registered handlers.
func (s *Stream) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}

// LastSeq returns the sequence number of the most recently published event.
func (s *Stream) LastSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Publish enqueues events and delivers them in order.
//
// If Publish is called re-entrantly from a handler, the new events are
// appended to the queue and delivered after the current event has reached
// every subscriber.
func (s *Stream) Publish(evts ...Event) {
	if len(evts) == 0 {
		return
	}

	s.mu.Lock()
	for _, e := range evts {
		s.seq++
		e.Seq = s.seq
		if e.Timestamp.IsZero() {
			e.Timestamp = s.now()
		}
		s.queue = append(s.queue, e)
	}
	if s.dispatching {
		s.mu.Unlock()
		return
	}
	s.dispatching = true

	for len(s.queue) > 0 {
		e := s.queue[0]
		s.queue = s.queue[1:]
		subs := make([]subscriber, len(s.subscribers))
		copy(subs, s.subscribers)
		logger := s.logger
		s.mu.Unlock()

		for _, sub := range subs {
			deliver(sub.handler, e, logger)
		}

		s.mu.Lock()
	}
	s.queue = nil
	s.dispatching = false
	s.mu.Unlock()
}

// deliver invokes a handler, recovering from panics so one faulty observer
// cannot stop delivery to the others.
func deliver(h Handler, e Event, logger Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("event handler panic recovered",
				"type", string(e.Type),
				"seq", e.Seq,
				"panic", r,
			)
		}
	}()
	h(e)
}

// Recorder is a Handler that keeps every event it receives. It is used by
// tests and by callers that need to inspect what an operation emitted.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Handle appends the event.
func (r *Recorder) Handle(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfType returns the recorded events of a single type.
func (r *Recorder) OfType(t Type) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Reset discards recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
