package tui

import (
	"github.com/Veraticus/fintrack/internal/state"
	"github.com/Veraticus/fintrack/internal/syncer"
)

// stateChangedMsg carries the state after a dispatched action.
type stateChangedMsg struct {
	state  state.State
	action string
}

// subscriptionClosedMsg is sent once the store subscription ends.
type subscriptionClosedMsg struct{}

// syncDoneMsg reports a finished manual sync.
type syncDoneMsg struct {
	err    error
	result syncer.Result
}
