package storage

import (
	"context"
	"errors"
	"time"

	"reblograffle/internal/raffle"
)

var (
	ErrDisabled = errors.New("storage disabled")
	ErrClosed   = errors.New("storage closed")
)

// Store is the persistence API used by the app.
type Store interface {
	AppendDraw(ctx context.Context, d Draw) error
	// ListDraws returns the newest draws first. limit <= 0 means all.
	ListDraws(ctx context.Context, limit int) ([]Draw, error)
	Close() error
}

// Config configures storage.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Draw records one raffle run. Keep it compact and schema-stable.
type Draw struct {
	ID       string          `json:"id"`
	At       time.Time       `json:"at"`
	PostURL  string          `json:"post_url"`
	Entrants int             `json:"entrants"`
	Winners  []raffle.Winner `json:"winners"`
	OK       bool            `json:"ok"`
	DryRun   bool            `json:"dry_run,omitempty"`
	Error    string          `json:"error,omitempty"`
}
