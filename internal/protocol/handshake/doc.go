// Package handshake implements the client side of the session key
// negotiation: wrapping a fresh symmetric key under the peer's public key
// and signing it on the way out, and verifying the signature before
// unwrapping on the way in. A failed verification is terminal for the
// connection attempt.
package handshake
