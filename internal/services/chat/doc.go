// Package chat drives the client session: watching the waiting list,
// joining it or initiating a pairing, negotiating the session key, and
// exchanging encrypted messages. Inbound frames that do not fit the
// current state are dropped silently; they can legitimately arrive late
// in a disconnect race.
package chat
