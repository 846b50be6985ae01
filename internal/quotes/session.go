package quotes

import (
	"context"
	"sync"
	"sync/atomic"
)

// Ticket identifies one lookup request within a Session.
type Ticket struct {
	Gen    uint64
	Symbol string
	Window Window
}

// State is what a Session currently presents.
type State struct {
	Gen     uint64
	Loading bool
	Result  *Result
	Err     error
}

// Session tracks the lookups issued for one viewer. Only the result of the
// most recently issued request is applied; results that arrive for earlier
// tickets are dropped regardless of arrival order.
type Session struct {
	gen atomic.Uint64

	mu        sync.Mutex
	state     State
	cancel    context.CancelFunc
	cancelGen uint64
}

// NewSession creates an idle session.
func NewSession() *Session {
	return &Session{}
}

// Request issues a new ticket, marking the session loading. Any previous
// ticket becomes stale.
func (s *Session) Request(ticker string, window Window) Ticket {
	g := s.gen.Add(1)
	s.mu.Lock()
	if g > s.state.Gen {
		s.state = State{Gen: g, Loading: true}
	}
	s.mu.Unlock()
	return Ticket{Gen: g, Symbol: ticker, Window: window}
}

// Commit applies a finished lookup if t is still the latest ticket. It
// reports whether the result was applied.
func (s *Session) Commit(t Ticket, res *Result, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.Gen != s.gen.Load() {
		return false
	}
	s.state = State{Gen: t.Gen, Result: res, Err: err}
	return true
}

// Current returns a snapshot of the session state.
func (s *Session) Current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run issues a ticket, performs the lookup and commits it. The previous
// in-flight lookup for this session is cancelled first. A result that is
// no longer current yields ErrSuperseded.
func (s *Session) Run(ctx context.Context, l Lookuper, ticker string, window Window) (*Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	t := s.Request(ticker, window)
	s.mu.Lock()
	if s.cancelGen < t.Gen {
		if s.cancel != nil {
			s.cancel()
		}
		s.cancel, s.cancelGen = cancel, t.Gen
	} else {
		// a newer lookup registered first
		cancel()
	}
	s.mu.Unlock()

	res, err := l.Lookup(ctx, ticker, window)
	if !s.Commit(t, res, err) {
		return nil, ErrSuperseded
	}
	s.mu.Lock()
	if s.cancelGen == t.Gen {
		s.cancel = nil
	}
	s.mu.Unlock()
	return res, err
}

// Sessions keys a Session per visitor.
type Sessions struct {
	mu    sync.Mutex
	items map[string]*Session
	max   int
}

// NewSessions creates a registry holding at most max sessions. When full, an
// arbitrary idle session is dropped to make room, or any session if none is
// idle.
func NewSessions(max int) *Sessions {
	if max <= 0 {
		max = 1024
	}
	return &Sessions{items: make(map[string]*Session), max: max}
}

// For returns the session for visitor, creating it if needed.
func (r *Sessions) For(visitor string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.items[visitor]; ok {
		return s
	}
	if len(r.items) >= r.max {
		victim := ""
		for k, s := range r.items {
			victim = k
			if !s.Current().Loading {
				break
			}
		}
		// a loading victim keeps running against its orphaned session
		delete(r.items, victim)
	}
	s := NewSession()
	r.items[visitor] = s
	return s
}

// Len returns the number of tracked sessions.
func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
