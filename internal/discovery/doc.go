// Package discovery finds SmartCast devices on the local network.
//
// Two strategies are tried in strict order: multicast DNS first, then SSDP.
// The second strategy only runs when the first finds nothing, so a network
// where mDNS works never pays the SSDP wait. Each strategy gets the same
// fixed timeout; a full scan is therefore bounded at twice the configured
// strategy timeout.
//
// # Scan Lifecycle
//
// The Reconciler allows one scan at a time. Starting a scan while one is in
// flight fails with ErrScanInFlight rather than queueing, because a second
// concurrent multicast probe would only duplicate the first's answers.
// Asynchronous scans deliver exactly one Result on the returned channel:
// devices and the scan trace together, never a partial update.
//
// Scan results describe what is on the network right now. Callers replace
// their previous view with the new result wholesale; results are never
// merged across scans, so devices that have gone away disappear.
package discovery
