package selection

import "sync"

// MemoryLocation is an in-process Location. Navigate simulates a change
// made outside the controller, such as back/forward navigation.
type MemoryLocation struct {
	mu       sync.Mutex
	fragment string
	nextID   int
	subs     map[int]func(string)
}

// NewMemoryLocation creates a location starting at fragment.
func NewMemoryLocation(fragment string) *MemoryLocation {
	return &MemoryLocation{fragment: fragment, subs: map[int]func(string){}}
}

func (l *MemoryLocation) Fragment() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fragment
}

// SetFragment records id without notifying subscribers.
func (l *MemoryLocation) SetFragment(id string) {
	l.mu.Lock()
	l.fragment = id
	l.mu.Unlock()
}

func (l *MemoryLocation) Subscribe(fn func(string)) func() {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.subs[id] = fn
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}
}

// Navigate changes the fragment and notifies subscribers.
func (l *MemoryLocation) Navigate(fragment string) {
	l.mu.Lock()
	l.fragment = fragment
	subs := make([]func(string), 0, len(l.subs))
	for _, fn := range l.subs {
		subs = append(subs, fn)
	}
	l.mu.Unlock()
	for _, fn := range subs {
		fn(fragment)
	}
}

// ScrollCounter is a Scroller that counts requests.
type ScrollCounter struct {
	mu sync.Mutex
	n  int
}

func (s *ScrollCounter) ScrollToTop() {
	s.mu.Lock()
	s.n++
	s.mu.Unlock()
}

// Count returns how many scroll requests were made.
func (s *ScrollCounter) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}
