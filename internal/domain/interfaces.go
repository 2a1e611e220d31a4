package domain

// ConfigStore persists the client configuration file.
type ConfigStore interface {
	Load() (Config, error)
	Save(Config) error
}

// IdentityStore persists the local private key, encrypted at rest.
type IdentityStore interface {
	SaveIdentity(passphrase string, privateKeyPEM []byte) error
	// LoadIdentity returns (nil, false, nil) when no identity has been
	// saved yet.
	LoadIdentity(passphrase string) ([]byte, bool, error)
}

// ProfileStore persists the local display name.
type ProfileStore interface {
	Username() (string, error)
	SetUsername(name string) error
}

// TrustStore pins peer key fingerprints, first use only.
type TrustStore interface {
	// Pin stores a fingerprint for peer. It returns false without
	// modifying anything if peer already has a pinned fingerprint.
	Pin(peer string, fp Fingerprint) (bool, error)
	PinnedFingerprint(peer string) (Fingerprint, bool, error)
}

// TrustService answers trust questions about peers' public keys.
type TrustService interface {
	IsTrusted(peer string, publicKey []byte) (bool, error)
	Trust(peer string, publicKey []byte) (bool, error)
}

// TransportClient is the client side of the always-on transport to the
// rendezvous server. Inbound traffic is delivered to a ClientEvents
// handler; these methods cover outbound traffic only.
type TransportClient interface {
	RegisterAsWaiting(username string, publicKey []byte) error
	ConnectToUser(username, targetID string, hs Handshake) error
	SendMessage(envelope string) error
	Close() error
}

// ClientEvents receives inbound transport frames, already decoded.
// Implementations must tolerate frames arriving in any state; a frame that
// does not fit the current state is ignored, not an error.
type ClientEvents interface {
	OnWaitingList(users []WaitingUser)
	OnAcceptConnection(hs Handshake, fromUsername string)
	OnNewMessage(envelope, fromUsername string)
	OnDisconnect()
}
