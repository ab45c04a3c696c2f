// Package storage keeps the history of raffle draws.
//
// It supports:
//   - "file": JSON Lines appended to a single file
//   - "sqlite": a SQLite database (pure Go driver)
//
// An empty driver or "none" disables history.
package storage
