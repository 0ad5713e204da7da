// Package tui implements the fintrack terminal dashboard.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/fintrack/internal/cli"
	"github.com/Veraticus/fintrack/internal/ledger"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/state"
	"github.com/Veraticus/fintrack/internal/syncer"
)

// ErrMissingDependency is returned by New when the store or ledger is nil.
var ErrMissingDependency = errors.New("dashboard requires a store and a ledger")

const subscriptionBuffer = 16

// Model holds the dashboard state.
type Model struct {
	ctx         context.Context
	lastErr     error
	store       *state.Store
	ledger      *ledger.Service
	changes     <-chan state.Change
	unsubscribe func()
	config      Config
	keymap      KeyMap
	help        help.Model
	spinner     spinner.Model
	recent      table.Model
	st          state.State
	status      string
	width       int
	height      int
	syncing     bool
	quitting    bool
}

// New creates the dashboard and subscribes it to store changes. Call Close when the
// program exits.
func New(ctx context.Context, store *state.Store, svc *ledger.Service, opts ...Option) (Model, error) {
	if store == nil || svc == nil {
		return Model{}, ErrMissingDependency
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Money == nil {
		cfg.Money = cli.DefaultMoney()
	}

	changes, unsubscribe := store.Subscribe(subscriptionBuffer)
	st := store.State()
	cli.ApplyTheme(st.Theme)

	m := Model{
		ctx:         ctx,
		store:       store,
		ledger:      svc,
		changes:     changes,
		unsubscribe: unsubscribe,
		config:      cfg,
		keymap:      DefaultKeyMap(),
		help:        help.New(),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		st:          st,
		width:       cfg.Width,
		height:      cfg.Height,
	}
	m.recent = table.New(
		table.WithColumns(m.columns()),
		table.WithFocused(true),
		table.WithHeight(cfg.Recent),
	)
	m.applyTheme()
	m.refreshRows()
	return m, nil
}

// Close ends the store subscription.
func (m Model) Close() {
	m.unsubscribe()
}

// Init starts listening for store changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForChange(m.changes), m.spinner.Tick)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.recent.SetColumns(m.columns())
		return m, nil

	case stateChangedMsg:
		themeChanged := msg.state.Theme != m.st.Theme
		m.st = msg.state
		if themeChanged {
			m.applyTheme()
		}
		m.refreshRows()
		return m, waitForChange(m.changes)

	case subscriptionClosedMsg:
		return m, nil

	case syncDoneMsg:
		m.syncing = false
		switch {
		case errors.Is(msg.err, syncer.ErrSkipped):
			m.status = "Sync skipped"
		case msg.err != nil:
			m.lastErr = msg.err
			m.status = ""
		default:
			result := msg.result
			m.lastErr = result.Err()
			m.status = fmt.Sprintf("Synced: %d inserted, %d updated, %d deleted",
				result.Inserted(), result.Updated(), result.Deleted())
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keymap.ToggleTheme):
		theme := m.ledger.ToggleTheme()
		m.st = m.store.State()
		m.applyTheme()
		m.status = "Theme: " + string(theme)
		return m, nil

	case key.Matches(msg, m.keymap.Sync):
		if m.config.Syncer == nil || m.syncing {
			return m, nil
		}
		m.syncing = true
		m.lastErr = nil
		m.status = ""
		return m, syncNow(m.ctx, m.config.Syncer)
	}

	var cmd tea.Cmd
	m.recent, cmd = m.recent.Update(msg)
	return m, cmd
}

// Theme returns the theme currently rendered.
func (m Model) Theme() model.Theme {
	return m.st.Theme
}

func (m *Model) applyTheme() {
	cli.ApplyTheme(m.st.Theme)
	p := cli.PaletteFor(m.st.Theme)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Bold(true).
		Foreground(p.Primary).
		BorderForeground(p.Border)
	styles.Selected = styles.Selected.
		Foreground(p.Primary).
		Bold(true)
	m.recent.SetStyles(styles)
	m.spinner.Style = cli.InfoStyle
}

func (m Model) columns() []table.Column {
	desc := 28
	if m.width > 110 {
		desc = m.width - 82
	}
	return []table.Column{
		{Title: "Date", Width: 10},
		{Title: "Description", Width: desc},
		{Title: "Category", Width: 20},
		{Title: "Account", Width: 20},
		{Title: "Amount", Width: 16},
	}
}

func (m *Model) refreshRows() {
	n := min(m.config.Recent, len(m.st.Transactions))
	rows := make([]table.Row, 0, n)
	for _, txn := range m.st.Transactions[:n] {
		rows = append(rows, table.Row{
			txn.Date.String(),
			txn.Description,
			model.CategoryLabel(txn.Category),
			m.target(txn),
			m.signedAmount(txn),
		})
	}
	m.recent.SetRows(rows)
}

func (m Model) target(txn model.Transaction) string {
	if txn.Type.UsesAccount() {
		if acc, ok := m.st.Account(txn.AccountID); ok {
			return acc.Label()
		}
		return txn.AccountID
	}
	if card, ok := m.st.CreditCard(txn.CreditCardID); ok {
		return card.Label()
	}
	return txn.CreditCardID
}

func (m Model) signedAmount(txn model.Transaction) string {
	if txn.Type == model.TransactionTypeIncome {
		return m.config.Money.Format(txn.Amount)
	}
	return m.config.Money.Format(txn.Amount.Neg())
}
