// Package identity manages creation and loading of the local RSA identity.
//
// On first run it generates a keypair and persists the private half,
// encrypted under the passphrase, via the domain.IdentityStore. Later runs
// load and decrypt it. The keypair is immutable for the process lifetime.
package identity
