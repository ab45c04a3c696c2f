package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var ErrNoSource = errors.New("source.url (or source.host + source.status_id) is required")

// Validate checks a config after defaults were applied.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if strings.TrimSpace(cfg.Source.URL) == "" {
		return ErrNoSource
	}
	if err := checkURL("source.url", cfg.Source.URL); err != nil {
		return err
	}
	if cfg.Webhook.URL != "" {
		if err := checkURL("webhook.url", cfg.Webhook.URL); err != nil {
			return err
		}
	}
	if cfg.Telegram.Enabled {
		if strings.TrimSpace(cfg.Telegram.Token) == "" {
			return errors.New("telegram.token is required when telegram.enabled")
		}
		if cfg.Telegram.ChatID == 0 {
			return errors.New("telegram.chat_id is required when telegram.enabled")
		}
	}
	if _, err := ParseDurationField("http.timeout", cfg.HTTP.Timeout); err != nil {
		return err
	}
	if cfg.Storage != nil {
		if _, err := ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout); err != nil {
			return err
		}
	}
	return nil
}

func checkURL(path, raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s: scheme must be http or https, got %q", path, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s: host is empty", path)
	}
	return nil
}

// ParseDurationField parses the Go duration string found at path. Empty means 0.
func ParseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

// ParseDurationOrDefault is ParseDurationField with def for empty or zero values.
func ParseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	d, err := ParseDurationField(path, raw)
	if err != nil || d > 0 {
		return d, err
	}
	return def, nil
}
