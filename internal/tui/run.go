package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/fintrack/internal/ledger"
	"github.com/Veraticus/fintrack/internal/state"
)

// Run shows the dashboard until the user quits or ctx is canceled.
func Run(ctx context.Context, store *state.Store, svc *ledger.Service, opts ...Option) error {
	m, err := New(ctx, store, svc, opts...)
	if err != nil {
		return err
	}
	defer m.Close()

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if m.config.AltMode {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	if _, err := tea.NewProgram(m, programOpts...).Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("dashboard error: %w", err)
	}
	return nil
}
