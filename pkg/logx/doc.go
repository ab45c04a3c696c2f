// Package logx configures reblograffle's structured logging.
//
// The bot uses a small wrapper (logx.Logger) on top of zerolog to keep:
//   - Console output readable (short timestamp + short caller)
//   - File output JSON-structured
//
// Console output goes to stderr. Stdout is reserved for the draw outcome record.
package logx
