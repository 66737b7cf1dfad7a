// Package registry manages castdeck's saved device records.
//
// Records are persisted as a single JSON array on disk, keyed by host and
// port. The registry is the authoritative source for device identity, auth
// tokens and per-device favourites; discovery results only enter it through
// an explicit save.
//
// # Persistence Model
//
// Every mutation writes the full record list to disk and then reloads it,
// so the in-memory view always reflects what a restart would load. A missing
// or malformed store file is treated as an empty registry rather than an
// error: the worst case after corruption is re-pairing, never a crash on
// startup.
//
// # Favourites
//
// Each record carries an ordered favourites list of up to six app names.
// Additions reject duplicates, blank names and overflow; order is preserved
// across save/reload.
//
// # Thread Safety
//
// Registry methods are safe for concurrent use. Returned records are clones;
// callers cannot mutate registry state through them.
package registry
