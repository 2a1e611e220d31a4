package identity

import (
	"enchat/internal/crypto"
	"enchat/internal/domain"
)

// Service loads or creates the local identity using a backing store.
type Service struct {
	store domain.IdentityStore
}

// New returns an identity service backed by the given store.
func New(s domain.IdentityStore) *Service { return &Service{store: s} }

// LoadOrCreate returns the local key ring, generating and persisting a
// new keypair of the given size on first run. created reports whether a
// new identity was generated.
func (s *Service) LoadOrCreate(passphrase string, bits int) (ring *crypto.KeyRing, created bool, err error) {
	pem, ok, err := s.store.LoadIdentity(passphrase)
	if err != nil {
		return nil, false, err
	}

	ring = crypto.NewKeyRing()
	if ok {
		if err := ring.ImportPrivate(pem); err != nil {
			return nil, false, err
		}
		return ring, false, nil
	}

	if err := ring.Generate(bits); err != nil {
		return nil, false, err
	}
	exported, err := ring.ExportPrivate()
	if err != nil {
		return nil, false, err
	}
	if err := s.store.SaveIdentity(passphrase, exported); err != nil {
		return nil, false, err
	}
	return ring, true, nil
}

// Fingerprint returns the fingerprint of the stored identity.
func (s *Service) Fingerprint(passphrase string) (domain.Fingerprint, error) {
	ring, _, err := s.LoadOrCreate(passphrase, crypto.DefaultKeySize)
	if err != nil {
		return "", err
	}
	fp, err := ring.Fingerprint()
	if err != nil {
		return "", err
	}
	return domain.Fingerprint(fp), nil
}
