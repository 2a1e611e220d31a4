// Package commands defines the enchat CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - init           Create the local identity and set a username
//   - fingerprint    Print the identity fingerprint
//   - chat           Connect to a rendezvous server and chat
//
// # Implementation
//
// The root command builds a dependency graph (store, identity and trust
// services) before any subcommand runs, so handlers share one app
// context.
package commands
