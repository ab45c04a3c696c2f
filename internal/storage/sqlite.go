package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	logx "reblograffle/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

// Fixed width so ORDER BY at sorts chronologically.
const sqlTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	path := cfg.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &sqliteStore{db: db, log: log}

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) AppendDraw(ctx context.Context, d Draw) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	if d.At.IsZero() {
		d.At = time.Now()
	}
	winners, err := json.Marshal(d.Winners)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO draws(id, at, post_url, entrants, winners, ok, dry_run, err) VALUES(?,?,?,?,?,?,?,?)`,
		d.ID, d.At.UTC().Format(sqlTimeFormat), d.PostURL, d.Entrants, string(winners), d.OK, d.DryRun, nullStr(d.Error),
	)
	return err
}

func (s *sqliteStore) ListDraws(ctx context.Context, limit int) ([]Draw, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	q := `SELECT id, at, post_url, entrants, winners, ok, dry_run, err FROM draws ORDER BY at DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Draw
	for rows.Next() {
		var (
			d       Draw
			at      string
			winners string
			errStr  sql.NullString
		)
		if err := rows.Scan(&d.ID, &at, &d.PostURL, &d.Entrants, &winners, &d.OK, &d.DryRun, &errStr); err != nil {
			return nil, err
		}
		if d.At, err = time.Parse(sqlTimeFormat, at); err != nil {
			return nil, fmt.Errorf("draw %s: bad timestamp: %w", d.ID, err)
		}
		if err := json.Unmarshal([]byte(winners), &d.Winners); err != nil {
			return nil, fmt.Errorf("draw %s: bad winners: %w", d.ID, err)
		}
		d.Error = errStr.String
		out = append(out, d)
	}
	return out, rows.Err()
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
