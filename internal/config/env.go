package config

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvSourceURL     = "RAFFLE_SOURCE_URL"
	EnvWebhookURL    = "RAFFLE_WEBHOOK_URL"
	EnvTelegramToken = "RAFFLE_TELEGRAM_TOKEN"
	EnvTelegramChat  = "RAFFLE_TELEGRAM_CHAT_ID"
)

var overrideKeys = []string{EnvSourceURL, EnvWebhookURL, EnvTelegramToken, EnvTelegramChat}

// env merges the .env file next to the config with the process environment.
// Process values win.
func (l *Loader) env() (map[string]string, error) {
	out := map[string]string{}

	dotenv := filepath.Join(filepath.Dir(l.path), ".env")
	f, err := l.fs.Open(dotenv)
	switch {
	case err == nil:
		vals, perr := godotenv.Parse(f)
		_ = f.Close()
		if perr != nil {
			return nil, perr
		}
		for k, v := range vals {
			out[k] = v
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	for _, k := range overrideKeys {
		if v, ok := l.lookupEnv(k); ok {
			out[k] = v
		}
	}
	return out, nil
}

func applyEnv(cfg *Config, env map[string]string) {
	if v := strings.TrimSpace(env[EnvSourceURL]); v != "" {
		cfg.Source.URL = v
	}
	if v := strings.TrimSpace(env[EnvWebhookURL]); v != "" {
		cfg.Webhook.URL = v
	}
	if v := strings.TrimSpace(env[EnvTelegramToken]); v != "" {
		cfg.Telegram.Token = v
	}
	if v := strings.TrimSpace(env[EnvTelegramChat]); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Telegram.ChatID = id
		}
	}
}
