package tui

import (
	"context"

	"github.com/Veraticus/fintrack/internal/cli"
	"github.com/Veraticus/fintrack/internal/ledger"
	"github.com/Veraticus/fintrack/internal/state"
	"github.com/Veraticus/fintrack/internal/syncer"
)

// Syncer pushes local changes to the remote store on demand.
type Syncer interface {
	SyncNow(ctx context.Context) (syncer.Result, error)
}

// Config holds the dashboard's collaborators and initial layout.
type Config struct {
	Store   *state.Store
	Ledger  *ledger.Service
	Syncer  Syncer
	Money   *cli.Money
	Width   int
	Height  int
	Recent  int
	AltMode bool
}

// Option is a functional option for configuring the dashboard.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Width:   100,
		Height:  30,
		Recent:  10,
		AltMode: true,
	}
}

// WithSyncer enables the manual sync key.
func WithSyncer(s Syncer) Option {
	return func(c *Config) {
		c.Syncer = s
	}
}

// WithMoney sets the currency formatter.
func WithMoney(m *cli.Money) Option {
	return func(c *Config) {
		c.Money = m
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithRecent sets how many recent transactions are listed.
func WithRecent(n int) Option {
	return func(c *Config) {
		c.Recent = n
	}
}

// WithInline renders in the normal screen buffer instead of the alternate screen.
func WithInline() Option {
	return func(c *Config) {
		c.AltMode = false
	}
}
