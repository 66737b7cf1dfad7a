// Package app holds castdeck's application state and orchestrates the other
// packages behind it.
//
// The Controller owns everything that used to be ad-hoc state: the last
// scan result, the active device connection and the in-flight pairing
// exchange. All of it lives behind one mutex, and every transition goes
// through a named method with an explicit error return, so the API layer
// never reaches into shared state directly.
//
// # State Model
//
//   - Scan results replace each other wholesale. The discovered-device list
//     always reflects the most recent completed scan, never a merge.
//   - At most one device connection is active at a time. Connecting to a
//     new device drops the previous connection.
//   - At most one pairing exchange is in flight, always against the
//     currently connected device.
//
// Completed scans and state changes are pushed to subscribers through the
// Notifier, which the WebSocket hub implements.
package app
