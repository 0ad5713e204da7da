package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/fintrack/internal/state"
)

// waitForChange blocks until the store applies another action.
func waitForChange(changes <-chan state.Change) tea.Cmd {
	return func() tea.Msg {
		change, ok := <-changes
		if !ok {
			return subscriptionClosedMsg{}
		}
		return stateChangedMsg{state: change.Next, action: change.Action.Name()}
	}
}

// syncNow runs one outbound reconciliation.
func syncNow(ctx context.Context, s Syncer) tea.Cmd {
	return func() tea.Msg {
		result, err := s.SyncNow(ctx)
		return syncDoneMsg{result: result, err: err}
	}
}
