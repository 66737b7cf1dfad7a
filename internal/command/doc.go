// Package command defines castdeck's closed device command set.
//
// Every action a client can ask a device to perform is one of the commands
// enumerated here. Dispatch validates the command name and argument before
// anything reaches the device, so an unknown command or a malformed argument
// fails fast with a typed error instead of an opaque device response.
//
// The set is deliberately closed: adding a command means adding an entry to
// the table in commands.go, which keeps the full surface auditable in one
// place.
package command
