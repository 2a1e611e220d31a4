package app

import (
	"enchat/internal/domain"
	identitysvc "enchat/internal/services/identity"
	trustsvc "enchat/internal/services/trust"
	"enchat/internal/store"
)

// Wire bundles the store and services for the CLI.
type Wire struct {
	Config    Config
	Store     *store.ConfigFileStore
	Identity  *identitysvc.Service
	Trust     domain.TrustService
	ServerURL string
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	fs := store.NewConfigFileStore(cfg.Home)

	return &Wire{
		Config:    cfg,
		Store:     fs,
		Identity:  identitysvc.New(fs),
		Trust:     trustsvc.New(fs),
		ServerURL: cfg.ServerURL,
	}, nil
}
