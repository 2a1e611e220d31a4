package trust

import (
	"enchat/internal/crypto"
	"enchat/internal/domain"
)

// Service answers trust questions by comparing public key fingerprints
// against the pins in the backing store.
type Service struct {
	store domain.TrustStore
}

// New returns a trust service backed by the given store.
func New(s domain.TrustStore) *Service { return &Service{store: s} }

// IsTrusted reports whether peer has a pinned fingerprint matching
// publicKey. An unpinned peer is never trusted.
func (s *Service) IsTrusted(peer string, publicKey []byte) (bool, error) {
	pinned, ok, err := s.store.PinnedFingerprint(peer)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return string(pinned) == crypto.Fingerprint(publicKey), nil
}

// Trust pins publicKey's fingerprint for peer. It returns false if the
// peer already has a pin; the existing pin is never overwritten, so a
// substituted key after first contact can never be re-trusted silently.
func (s *Service) Trust(peer string, publicKey []byte) (bool, error) {
	return s.store.Pin(peer, domain.Fingerprint(crypto.Fingerprint(publicKey)))
}

// Compile-time assertion that Service implements domain.TrustService.
var _ domain.TrustService = (*Service)(nil)
