// Package history records castdeck activity in SQLite.
//
// Every dispatched command, scan, pairing attempt and connection is logged
// as one entry with its outcome. The log is append-only from the
// application's point of view; Prune trims old entries by age.
//
// History is an optional feature. When disabled in config, the app layer
// holds a nil repository and skips recording entirely.
package history
