// Package rendezvous tracks who is waiting to be paired and pairs exactly
// one initiator with one waiting party. All state changes happen under a
// single lock, so two initiators can never win the same waiting party and
// a disconnect resolves both sides of a pairing atomically. The service
// performs no I/O: callers forward to the transport after the mutation has
// committed.
package rendezvous
