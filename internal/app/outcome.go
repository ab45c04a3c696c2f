package app

import (
	"encoding/json"
	"io"

	"reblograffle/internal/raffle"
)

// Outcome is the single structured record a run writes to stdout.
type Outcome struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// DrawData is the Data of a successful run.
type DrawData struct {
	DrawID   string          `json:"draw_id"`
	PostURL  string          `json:"post_url"`
	Entrants int             `json:"entrants"`
	Winners  []raffle.Winner `json:"winners"`
	DryRun   bool            `json:"dry_run,omitempty"`
}

// FailureData is the Data of a failed run.
type FailureData struct {
	DrawID string `json:"draw_id,omitempty"`
	Stage  string `json:"stage,omitempty"`
}

// WriteOutcome writes o as one JSON line.
func WriteOutcome(w io.Writer, o Outcome) error {
	if o.Data == nil {
		o.Data = struct{}{}
	}
	return json.NewEncoder(w).Encode(o)
}
