package handshake

import (
	"errors"
	"fmt"

	"enchat/internal/crypto"
	"enchat/internal/domain"
)

// State tracks one connection attempt from peer selection to an
// established (or rejected) session.
type State int

const (
	// Idle: no negotiation in progress.
	Idle State = iota
	// AwaitingPeerSelection: connected, watching the waiting list.
	AwaitingPeerSelection
	// NegotiatingOutbound: we initiated and sent a wrapped key.
	NegotiatingOutbound
	// AwaitingInbound: we registered as waiting and expect a wrapped key.
	AwaitingInbound
	// Established: both sides hold the session key.
	Established
	// Rejected: signature verification failed; the attempt is dead.
	Rejected
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingPeerSelection:
		return "awaiting-peer-selection"
	case NegotiatingOutbound:
		return "negotiating-outbound"
	case AwaitingInbound:
		return "awaiting-inbound"
	case Established:
		return "established"
	case Rejected:
		return "rejected"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var (
	// ErrBadState is returned when an operation does not fit the
	// current protocol state.
	ErrBadState = errors.New("handshake: operation invalid in current state")

	// ErrSignature is returned when an inbound handshake's signature
	// does not verify against the sender's declared public key.
	ErrSignature = errors.New("handshake: signature verification failed")
)

// Protocol drives one session negotiation. It owns the peer's imported
// public key and the session cipher the negotiated key is installed into.
type Protocol struct {
	own     *crypto.KeyRing
	peer    *crypto.KeyRing
	session *crypto.SessionCipher
	state   State
}

// New returns an idle protocol bound to the local identity and a session
// cipher.
func New(own *crypto.KeyRing, session *crypto.SessionCipher) *Protocol {
	return &Protocol{own: own, session: session}
}

// State returns the current protocol state.
func (p *Protocol) State() State { return p.state }

// Session returns the cipher holding the negotiated key.
func (p *Protocol) Session() *crypto.SessionCipher { return p.session }

// Begin moves an idle protocol to peer selection.
func (p *Protocol) Begin() error {
	if p.state != Idle {
		return fmt.Errorf("%w: %s", ErrBadState, p.state)
	}
	p.state = AwaitingPeerSelection
	return nil
}

// Await marks that we registered as a waiting party and now expect an
// inbound handshake.
func (p *Protocol) Await() error {
	if p.state != AwaitingPeerSelection {
		return fmt.Errorf("%w: %s", ErrBadState, p.state)
	}
	p.state = AwaitingInbound
	return nil
}

// Initiate produces the outbound handshake for a chosen peer: a fresh
// session key wrapped under peerPublicKey and signed with our private key.
func (p *Protocol) Initiate(peerPublicKey []byte) (domain.Handshake, error) {
	if p.state != AwaitingPeerSelection {
		return domain.Handshake{}, fmt.Errorf("%w: %s", ErrBadState, p.state)
	}

	peer := crypto.NewKeyRing()
	if err := peer.ImportPublic(peerPublicKey); err != nil {
		return domain.Handshake{}, err
	}

	sessionKey, err := p.session.GenerateKey()
	if err != nil {
		return domain.Handshake{}, err
	}
	wrapped, err := peer.Wrap(sessionKey)
	if err != nil {
		return domain.Handshake{}, err
	}
	signature, err := p.own.Sign(wrapped)
	if err != nil {
		return domain.Handshake{}, err
	}
	ownPublic, err := p.own.ExportPublic()
	if err != nil {
		return domain.Handshake{}, err
	}

	p.peer = peer
	p.state = NegotiatingOutbound
	return domain.Handshake{
		WrappedKey: wrapped,
		PublicKey:  ownPublic,
		Signature:  signature,
	}, nil
}

// Delivered moves an outbound negotiation to Established once the
// transport has accepted the handshake. Delivery to the peer is the
// relay's job; it is not verified here.
func (p *Protocol) Delivered() error {
	if p.state != NegotiatingOutbound {
		return fmt.Errorf("%w: %s", ErrBadState, p.state)
	}
	p.state = Established
	return nil
}

// Accept validates an inbound handshake. The signature over the wrapped
// key is checked against the sender's declared public key before anything
// is decrypted; on mismatch the protocol is Rejected and the session must
// be torn down. On success the unwrapped key is installed into the
// session cipher.
func (p *Protocol) Accept(hs domain.Handshake) error {
	if p.state != AwaitingInbound {
		return fmt.Errorf("%w: %s", ErrBadState, p.state)
	}

	peer := crypto.NewKeyRing()
	if err := peer.ImportPublic(hs.PublicKey); err != nil {
		p.state = Rejected
		return err
	}
	if err := peer.Verify(hs.WrappedKey, hs.Signature); err != nil {
		p.state = Rejected
		return ErrSignature
	}

	sessionKey, err := p.own.Unwrap(hs.WrappedKey)
	if err != nil {
		p.state = Rejected
		return err
	}
	if err := p.session.LoadKey(sessionKey); err != nil {
		p.state = Rejected
		return err
	}

	p.peer = peer
	p.state = Established
	return nil
}

// Reset tears the negotiation down: the session key is wiped and the
// protocol returns to Idle. Used on disconnect.
func (p *Protocol) Reset() {
	p.session.Wipe()
	p.peer = nil
	p.state = Idle
}

// OwnPublicKey returns the local identity's exported public key.
func (p *Protocol) OwnPublicKey() ([]byte, error) {
	return p.own.ExportPublic()
}

// OwnFingerprint returns the local key's fingerprint.
func (p *Protocol) OwnFingerprint() (string, error) {
	return p.own.Fingerprint()
}

// PeerFingerprint returns the fingerprint of the peer we negotiated with.
func (p *Protocol) PeerFingerprint() (string, error) {
	if p.peer == nil {
		return "", crypto.ErrNoKeyLoaded
	}
	return p.peer.Fingerprint()
}
