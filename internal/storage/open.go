package storage

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	logx "reblograffle/pkg/logx"
)

// Open initializes the configured store.
// It returns (nil, nil) if storage is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	return OpenFs(afero.NewOsFs(), cfg, log)
}

// OpenFs is Open with an explicit filesystem for the file driver.
func OpenFs(fs afero.Fs, cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "file":
		return openFile(fs, cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + driver)
	}
}

// NewDrawID returns a fresh draw identifier.
func NewDrawID() string { return uuid.NewString() }
