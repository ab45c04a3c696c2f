package config

// Config is the on-disk configuration of a raffle run.
//
// The same structure is accepted as JSON, YAML or TOML. Unknown keys are rejected.
type Config struct {
	Source   SourceConfig   `json:"source"`
	Webhook  WebhookConfig  `json:"webhook"`
	Telegram TelegramConfig `json:"telegram,omitempty"`
	Raffle   RaffleConfig   `json:"raffle"`
	Message  MessageConfig  `json:"message,omitempty"`
	HTTP     HTTPConfig     `json:"http,omitempty"`
	Logging  LoggingConfig  `json:"logging"`
	Output   OutputConfig   `json:"output,omitempty"`
	Storage  *StorageConfig `json:"storage,omitempty"`
}

// SourceConfig points at the post whose reblogs are drawn from.
//
// Either URL is set, or Host + StatusID are combined into
// https://<host>/api/v1/statuses/<status_id>/reblogged_by.
type SourceConfig struct {
	URL      string `json:"url,omitempty"`
	Host     string `json:"host,omitempty"`
	StatusID string `json:"status_id,omitempty"`

	// MaxPages > 1 follows Link rel="next" headers. Default 1 (single GET).
	MaxPages int `json:"max_pages,omitempty"`
	// RequestsPerSec paces page requests. Default 1.
	RequestsPerSec float64 `json:"requests_per_sec,omitempty"`
}

type WebhookConfig struct {
	URL string `json:"url"`
}

// TelegramConfig enables a second announcement to a Telegram chat.
type TelegramConfig struct {
	Enabled  bool   `json:"enabled"`
	Token    string `json:"token,omitempty"` // do not log
	ChatID   int64  `json:"chat_id,omitempty"`
	ThreadID int    `json:"thread_id,omitempty"`
	// APIURL overrides the Bot API endpoint (default https://api.telegram.org).
	APIURL string `json:"api_url,omitempty"`
}

type RaffleConfig struct {
	// MaxWinners caps the number of winners. Default 11.
	MaxWinners int `json:"max_winners,omitempty"`
	// Exclude lists accts (with or without leading "@") that never win.
	Exclude []string `json:"exclude,omitempty"`
	// Dedupe drops repeated accts before the shuffle.
	Dedupe bool `json:"dedupe,omitempty"`
	// DrawAt is an optional cron expression; the run waits for its next tick.
	DrawAt   string `json:"draw_at,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// MessageConfig holds the fixed announcement and outcome strings.
// Empty fields fall back to the defaults in defaults.go.
type MessageConfig struct {
	Username    string `json:"username,omitempty"`
	Content     string `json:"content,omitempty"`
	Title       string `json:"title,omitempty"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`

	FetchFailed  string `json:"fetch_failed,omitempty"`
	NotifyFailed string `json:"notify_failed,omitempty"`
	Done         string `json:"done,omitempty"`
}

// HTTPConfig controls the shared HTTP client.
type HTTPConfig struct {
	// Timeout is a Go duration string. "0s" or empty disables it.
	Timeout string `json:"timeout,omitempty"`
	// InsecureSkipVerify disables TLS certificate checks. Opt-in only.
	InsecureSkipVerify bool   `json:"insecure_skip_verify,omitempty"`
	UserAgent          string `json:"user_agent,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file,omitempty"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type OutputConfig struct {
	// ExitZeroOnFailure keeps the process exit code at 0 even when the draw fails.
	ExitZeroOnFailure bool `json:"exit_zero_on_failure,omitempty"`
}

// StorageConfig controls the optional draw history.
//
// Example:
//
//	"storage": { "driver": "sqlite", "path": "./raffle.db" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}
