package domain

// HandleID identifies one live connection on the rendezvous server. It is
// opaque to clients; waiting parties are addressed by their WaitingUser.ID.
type HandleID string

// Fingerprint is a hex-encoded SHA-256 digest of an exported public key,
// used for out-of-band verification and trust pinning.
type Fingerprint string

// WaitingUser is the public view of a waiting party, as broadcast in
// UpdateWaitingList. It never carries private key material.
type WaitingUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	PublicKey []byte `json:"publicKey"`
}

// Handshake carries a session key wrapped under the recipient's public key,
// the sender's public key, and a signature over the wrapped key made with
// the sender's private key. It is validated on receipt, never persisted.
type Handshake struct {
	WrappedKey []byte `json:"wrappedKey"`
	PublicKey  []byte `json:"publicKey"`
	Signature  []byte `json:"signature"`
}

// Config is the persisted client state: display name, the private key
// (an encrypted blob, see store), and pinned peer fingerprints.
type Config struct {
	Username     string            `json:"username,omitempty"`
	PrivateKey   []byte            `json:"privateKey,omitempty"`
	TrustedPeers map[string]string `json:"trustedPeers,omitempty"`
}
