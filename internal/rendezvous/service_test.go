package rendezvous

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enchat/internal/domain"
)

var testKey = []byte("-----BEGIN PUBLIC KEY-----\ntest\n-----END PUBLIC KEY-----\n")

func testHandshake() domain.Handshake {
	return domain.Handshake{
		WrappedKey: []byte("wrapped"),
		PublicKey:  testKey,
		Signature:  []byte("signature"),
	}
}

func TestRegisterWaiting(t *testing.T) {
	svc := New()

	user, err := svc.RegisterWaiting("conn-1", "alice.01", testKey)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice.01", user.Username)
	assert.Equal(t, testKey, user.PublicKey)

	users := svc.WaitingUsers()
	require.Len(t, users, 1)
	assert.Equal(t, user.ID, users[0].ID)
}

func TestRegisterWaitingRejectsBadNames(t *testing.T) {
	svc := New()

	for _, name := range []string{"", "ab", "a..b", "_abc", "abc_", "a b c", "waytoolongusername-xx"} {
		_, err := svc.RegisterWaiting("conn-1", name, testKey)
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
}

func TestRegisterWaitingRejectsDuplicates(t *testing.T) {
	svc := New()

	_, err := svc.RegisterWaiting("conn-1", "alice", testKey)
	require.NoError(t, err)

	_, err = svc.RegisterWaiting("conn-2", "alice", testKey)
	assert.ErrorIs(t, err, ErrNameTaken)

	_, err = svc.RegisterWaiting("conn-1", "other", testKey)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	_, err = svc.RegisterWaiting("conn-3", "carol", nil)
	assert.ErrorIs(t, err, ErrInvalidHandshake)
}

func TestPair(t *testing.T) {
	svc := New()

	bob, err := svc.RegisterWaiting("conn-bob", "bob", testKey)
	require.NoError(t, err)

	target, err := svc.Pair("conn-alice", "alice", bob.ID, testHandshake())
	require.NoError(t, err)
	assert.Equal(t, domain.HandleID("conn-bob"), target)

	// Bob left the waiting list.
	assert.Empty(t, svc.WaitingUsers())

	// Relay now works both ways.
	to, from, ok := svc.Relay("conn-alice")
	require.True(t, ok)
	assert.Equal(t, domain.HandleID("conn-bob"), to)
	assert.Equal(t, "alice", from)

	to, from, ok = svc.Relay("conn-bob")
	require.True(t, ok)
	assert.Equal(t, domain.HandleID("conn-alice"), to)
	assert.Equal(t, "bob", from)
}

func TestPairFailures(t *testing.T) {
	svc := New()

	bob, err := svc.RegisterWaiting("conn-bob", "bob", testKey)
	require.NoError(t, err)

	_, err = svc.Pair("conn-a", "bad name", bob.ID, testHandshake())
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = svc.Pair("conn-a", "alice", "no-such-id", testHandshake())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Pair("conn-a", "bob", bob.ID, testHandshake())
	assert.ErrorIs(t, err, ErrNameTaken)

	_, err = svc.Pair("conn-a", "alice", bob.ID, domain.Handshake{PublicKey: testKey})
	assert.ErrorIs(t, err, ErrInvalidHandshake)

	// A connection that is already waiting cannot also initiate.
	_, err = svc.Pair("conn-bob", "carol", bob.ID, testHandshake())
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	// First pairing wins, second initiator loses.
	_, err = svc.Pair("conn-a", "alice", bob.ID, testHandshake())
	require.NoError(t, err)
	_, err = svc.Pair("conn-c", "carol", bob.ID, testHandshake())
	assert.ErrorIs(t, err, ErrAlreadyPaired)
}

func TestPairAtomicityUnderRace(t *testing.T) {
	// Two concurrent initiators target the same waiting party; exactly
	// one must win, on every iteration.
	for i := 0; i < 50; i++ {
		svc := New()
		bob, err := svc.RegisterWaiting("conn-bob", "bob", testKey)
		require.NoError(t, err)

		errs := make([]error, 2)
		var wg sync.WaitGroup
		for n := 0; n < 2; n++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				handle := domain.HandleID(fmt.Sprintf("conn-init-%d", n))
				name := fmt.Sprintf("alice%d", n)
				_, errs[n] = svc.Pair(handle, name, bob.ID, testHandshake())
			}(n)
		}
		wg.Wait()

		winners := 0
		for _, err := range errs {
			if err == nil {
				winners++
			} else {
				assert.ErrorIs(t, err, ErrAlreadyPaired)
			}
		}
		require.Equal(t, 1, winners, "exactly one initiator must win")
	}
}

func TestDisconnectSymmetry(t *testing.T) {
	svc := New()

	bob, err := svc.RegisterWaiting("conn-bob", "bob", testKey)
	require.NoError(t, err)
	_, err = svc.Pair("conn-alice", "alice", bob.ID, testHandshake())
	require.NoError(t, err)

	// Disconnecting alice reports bob as the peer to notify.
	peer, wasWaiting, ok := svc.Disconnect("conn-alice")
	require.True(t, ok)
	assert.False(t, wasWaiting)
	assert.Equal(t, domain.HandleID("conn-bob"), peer)

	// Bob is no longer paired with anyone.
	_, _, ok = svc.Relay("conn-bob")
	assert.False(t, ok)

	// Bob's own disconnect has no peer left to notify.
	peer, _, ok = svc.Disconnect("conn-bob")
	require.True(t, ok)
	assert.Empty(t, peer)
}

func TestDisconnectIdempotent(t *testing.T) {
	svc := New()

	_, _, ok := svc.Disconnect("never-seen")
	assert.False(t, ok)

	_, err := svc.RegisterWaiting("conn-1", "alice", testKey)
	require.NoError(t, err)

	_, wasWaiting, ok := svc.Disconnect("conn-1")
	require.True(t, ok)
	assert.True(t, wasWaiting)

	_, _, ok = svc.Disconnect("conn-1")
	assert.False(t, ok)

	// The name is free again after the disconnect.
	_, err = svc.RegisterWaiting("conn-2", "alice", testKey)
	assert.NoError(t, err)
}

func TestRelayWithoutPeerDrops(t *testing.T) {
	svc := New()

	_, _, ok := svc.Relay("unknown")
	assert.False(t, ok)

	_, err := svc.RegisterWaiting("conn-1", "alice", testKey)
	require.NoError(t, err)

	// Waiting but unpaired: still a silent drop.
	_, _, ok = svc.Relay("conn-1")
	assert.False(t, ok)
}

func TestWaitingUsersOrder(t *testing.T) {
	svc := New()

	for i, name := range []string{"alice", "bob", "carol"} {
		_, err := svc.RegisterWaiting(domain.HandleID(fmt.Sprintf("conn-%d", i)), name, testKey)
		require.NoError(t, err)
	}

	users := svc.WaitingUsers()
	require.Len(t, users, 3)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
	assert.Equal(t, "carol", users[2].Username)
}
