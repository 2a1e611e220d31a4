// Package crypto implements the primitives behind the pairing protocol:
// the long-term RSA identity (wrap, unwrap, sign, verify), the per-session
// AES-GCM cipher with its self-describing iv/ciphertext envelope, and key
// fingerprinting for trust pinning.
package crypto
