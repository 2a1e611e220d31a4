package trust_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enchat/internal/services/trust"
	"enchat/internal/store"
)

func newTestService(t *testing.T) *trust.Service {
	t.Helper()
	return trust.New(store.NewConfigFileStore(t.TempDir()))
}

func TestTrustFirstUseOnly(t *testing.T) {
	svc := newTestService(t)
	keyA := []byte("public key A")
	keyB := []byte("public key B")

	ok, err := svc.Trust("alice", keyA)
	require.NoError(t, err)
	assert.True(t, ok, "first pin must succeed")

	// Any later pin for the same name is refused.
	ok, err = svc.Trust("alice", keyB)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = svc.Trust("alice", keyA)
	require.NoError(t, err)
	assert.False(t, ok)

	// The original key stays trusted, the substituted one never is.
	trusted, err := svc.IsTrusted("alice", keyA)
	require.NoError(t, err)
	assert.True(t, trusted)
	trusted, err = svc.IsTrusted("alice", keyB)
	require.NoError(t, err)
	assert.False(t, trusted)
}

func TestUnpinnedPeerIsNeverTrusted(t *testing.T) {
	svc := newTestService(t)

	trusted, err := svc.IsTrusted("stranger", []byte("whatever"))
	require.NoError(t, err)
	assert.False(t, trusted)
}

func TestDistinctPeersPinIndependently(t *testing.T) {
	svc := newTestService(t)

	ok, err := svc.Trust("alice", []byte("key A"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Trust("bob", []byte("key B"))
	require.NoError(t, err)
	assert.True(t, ok)

	trusted, err := svc.IsTrusted("bob", []byte("key A"))
	require.NoError(t, err)
	assert.False(t, trusted, "bob pinned a different key")
}
