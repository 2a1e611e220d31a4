// Package store persists the client configuration: display name, the
// local private key (encrypted under a passphrase), and pinned peer
// fingerprints. Everything lives in one JSON file written atomically.
package store
