package store

import (
	"path/filepath"
	"sync"

	"enchat/internal/domain"
)

const configFilename = "enchat.json"

// ConfigFileStore keeps the whole client configuration in one JSON file.
// It backs the profile, identity, and trust store contracts at once, the
// way the original single config file did.
type ConfigFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewConfigFileStore returns a store rooted at dir.
func NewConfigFileStore(dir string) *ConfigFileStore {
	return &ConfigFileStore{dir: dir}
}

func (s *ConfigFileStore) path() string {
	return filepath.Join(s.dir, configFilename)
}

// Load reads the config file. A missing file yields a zero config.
func (s *ConfigFileStore) Load() (domain.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Save replaces the config file.
func (s *ConfigFileStore) Save(cfg domain.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(s.path(), cfg, 0o600)
}

func (s *ConfigFileStore) loadLocked() (domain.Config, error) {
	var cfg domain.Config
	if err := readJSON(s.path(), &cfg); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

// SaveIdentity seals the private key under the passphrase and stores it.
func (s *ConfigFileStore) SaveIdentity(passphrase string, privateKeyPEM []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.loadLocked()
	if err != nil {
		return err
	}
	blob, err := sealKey(passphrase, privateKeyPEM)
	if err != nil {
		return err
	}
	cfg.PrivateKey = blob
	return writeJSON(s.path(), cfg, 0o600)
}

// LoadIdentity opens the stored private key. ok is false when no identity
// has been saved yet.
func (s *ConfigFileStore) LoadIdentity(passphrase string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.loadLocked()
	if err != nil {
		return nil, false, err
	}
	if len(cfg.PrivateKey) == 0 {
		return nil, false, nil
	}
	raw, err := openKey(passphrase, cfg.PrivateKey)
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

// Username returns the stored display name, empty if unset.
func (s *ConfigFileStore) Username() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.loadLocked()
	if err != nil {
		return "", err
	}
	return cfg.Username, nil
}

// SetUsername stores the display name.
func (s *ConfigFileStore) SetUsername(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.loadLocked()
	if err != nil {
		return err
	}
	cfg.Username = name
	return writeJSON(s.path(), cfg, 0o600)
}

// Pin stores a fingerprint for peer. The first pin wins: if the peer
// already has one, nothing is written and false is returned.
func (s *ConfigFileStore) Pin(peer string, fp domain.Fingerprint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.loadLocked()
	if err != nil {
		return false, err
	}
	if _, exists := cfg.TrustedPeers[peer]; exists {
		return false, nil
	}
	if cfg.TrustedPeers == nil {
		cfg.TrustedPeers = make(map[string]string)
	}
	cfg.TrustedPeers[peer] = string(fp)
	if err := writeJSON(s.path(), cfg, 0o600); err != nil {
		return false, err
	}
	return true, nil
}

// PinnedFingerprint returns the pinned fingerprint for peer, if any.
func (s *ConfigFileStore) PinnedFingerprint(peer string) (domain.Fingerprint, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.loadLocked()
	if err != nil {
		return "", false, err
	}
	fp, ok := cfg.TrustedPeers[peer]
	return domain.Fingerprint(fp), ok, nil
}

// Compile-time assertions against the domain contracts.
var (
	_ domain.ConfigStore   = (*ConfigFileStore)(nil)
	_ domain.IdentityStore = (*ConfigFileStore)(nil)
	_ domain.ProfileStore  = (*ConfigFileStore)(nil)
	_ domain.TrustStore    = (*ConfigFileStore)(nil)
)
