package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"reblograffle/internal/announce"
	"reblograffle/internal/config"
	"reblograffle/internal/mastodon"
	"reblograffle/internal/storage"
	logx "reblograffle/pkg/logx"
)

// Build wires an App from config. The returned cleanup closes the store.
func Build(cfg *config.Config, opts Options, log logx.Logger) (*App, func(), error) {
	timeout, err := config.ParseDurationField("http.timeout", cfg.HTTP.Timeout)
	if err != nil {
		return nil, nil, err
	}

	fetcher := mastodon.New(mastodon.Config{
		MaxPages:           cfg.Source.MaxPages,
		RequestsPerSec:     cfg.Source.RequestsPerSec,
		Timeout:            timeout,
		InsecureSkipVerify: cfg.HTTP.InsecureSkipVerify,
		UserAgent:          cfg.HTTP.UserAgent,
	}, log.With(logx.String("comp", "mastodon")))

	ann, err := buildAnnouncer(cfg, opts, timeout, log)
	if err != nil {
		return nil, nil, err
	}

	var store storage.Store
	if sc, enabled, err := mapStorageConfig(cfg); err != nil {
		return nil, nil, err
	} else if enabled {
		st, err := storage.Open(sc, log.With(logx.String("comp", "storage")))
		if err != nil {
			return nil, nil, err
		}
		store = st
		log.Info("storage enabled", logx.String("driver", sc.Driver))
	}
	cleanup := func() {
		if store != nil {
			_ = store.Close()
		}
	}

	deps := Deps{
		Fetcher: fetcher,
		Store:   store,
		Log:     log,
	}
	if ann != nil {
		deps.Announcer = ann
	}
	if opts.Confirm {
		deps.Confirmer = PromptConfirmer{In: os.Stdin, Out: logx.Stderr()}
	}

	a, err := New(cfg, opts, deps)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return a, cleanup, nil
}

// buildAnnouncer returns nil when no channel is configured.
func buildAnnouncer(cfg *config.Config, opts Options, timeout time.Duration, log logx.Logger) (*announce.Multi, error) {
	client := mastodon.NewHTTPClient(timeout, cfg.HTTP.InsecureSkipVerify, logx.Logger{})

	var list []announce.Announcer
	if strings.TrimSpace(cfg.Webhook.URL) != "" {
		list = append(list, announce.NewWebhook(cfg.Webhook.URL, client))
	}
	if cfg.Telegram.Enabled {
		tg, err := announce.NewTelegram(announce.TelegramConfig{
			Token:    cfg.Telegram.Token,
			ChatID:   cfg.Telegram.ChatID,
			ThreadID: cfg.Telegram.ThreadID,
			APIURL:   cfg.Telegram.APIURL,
		}, client)
		if err != nil {
			return nil, fmt.Errorf("telegram: %w", err)
		}
		list = append(list, tg)
	}
	if len(list) == 0 {
		if !opts.DryRun {
			log.Warn("no announcement channel configured; the draw will fail at the notify step")
		}
		return nil, nil
	}
	return announce.NewMulti(log.With(logx.String("comp", "announce")), list...), nil
}

func mapStorageConfig(cfg *config.Config) (storage.Config, bool, error) {
	if cfg == nil || cfg.Storage == nil {
		return storage.Config{}, false, nil
	}
	sc := cfg.Storage
	driver := strings.ToLower(strings.TrimSpace(sc.Driver))
	if driver == "" || driver == "none" {
		return storage.Config{}, false, nil
	}
	path := strings.TrimSpace(sc.Path)

	switch driver {
	case "file":
		if path == "" {
			path = "./raffle-history.jsonl"
		}
		return storage.Config{Driver: "file", Path: path}, true, nil
	case "sqlite", "sqlite3":
		if path == "" {
			return storage.Config{}, false, fmt.Errorf("storage.path is required when storage.driver=sqlite")
		}
		busy, err := config.ParseDurationOrDefault("storage.busy_timeout", sc.BusyTimeout, time.Second)
		if err != nil {
			return storage.Config{}, false, err
		}
		return storage.Config{Driver: driver, Path: path, BusyTimeout: busy}, true, nil
	default:
		return storage.Config{}, false, fmt.Errorf("unknown storage.driver: %s", sc.Driver)
	}
}

// OpenHistory opens the configured draw history. It returns storage.ErrDisabled
// when no storage is configured.
func OpenHistory(cfg *config.Config, log logx.Logger) (storage.Store, error) {
	sc, enabled, err := mapStorageConfig(cfg)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, storage.ErrDisabled
	}
	return storage.Open(sc, log.With(logx.String("comp", "storage")))
}
