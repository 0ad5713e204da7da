package state

import (
	"log/slog"
	"sync"
)

// Change describes one applied action.
type Change struct {
	Action Action
	Prev   State
	Next   State
}

// Store owns the application state. Dispatch is the only way to change it and
// dispatches are applied one at a time.
type Store struct {
	subs    map[int]chan Change
	state   State
	nextSub int
	mu      sync.RWMutex
}

// NewStore creates a store holding initial.
func NewStore(initial State) *Store {
	return &Store{
		state: initial,
		subs:  make(map[int]chan Change),
	}
}

// State returns the current state. The returned value must be treated as read-only.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch applies action and notifies subscribers. It returns the new state.
func (s *Store) Dispatch(action Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	s.state = Reduce(prev, action)

	slog.Debug("dispatched action",
		"action", action.Name(),
		"accounts", len(s.state.Accounts),
		"credit_cards", len(s.state.CreditCards),
		"transactions", len(s.state.Transactions),
		"categories", len(s.state.Categories))

	change := Change{Action: action, Prev: prev, Next: s.state}
	for _, ch := range s.subs {
		select {
		case ch <- change:
		default:
			// Subscriber is behind; it can always read the latest state.
		}
	}

	return s.state
}

// Subscribe returns a channel receiving every change applied after the call, and a
// function that cancels the subscription. A subscriber that falls more than buffer
// changes behind misses the overflow.
func (s *Store) Subscribe(buffer int) (<-chan Change, func()) {
	if buffer <= 0 {
		buffer = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Change, buffer)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}
