package chat

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"enchat/internal/crypto"
	"enchat/internal/domain"
	"enchat/internal/protocol/handshake"
)

// State is the client session state.
type State int

const (
	// StateSelecting: watching the waiting list, choosing a peer.
	StateSelecting State = iota
	// StateWaiting: registered on the waiting list.
	StateWaiting
	// StateInChat: paired, session key established.
	StateInChat
	// StateDisconnected: the session is over; the engine is done.
	StateDisconnected
)

// In-chat commands.
const (
	// TrustCommand pins the current peer's key.
	TrustCommand = "/trust"
)

const (
	trustedBadge    = "[trusted]"
	notTrustedBadge = "[not trusted]"
)

// ErrDisconnected is returned by HandleInput once the session is over.
var ErrDisconnected = errors.New("chat: disconnected")

// Engine is the client session state machine. Inbound transport events
// and console input arrive on different goroutines; all state is guarded
// by one mutex.
type Engine struct {
	mu        sync.Mutex
	out       io.Writer
	username  string
	transport domain.TransportClient
	trust     domain.TrustService
	proto     *handshake.Protocol

	state   State
	waiting []domain.WaitingUser
	peer    domain.WaitingUser
}

// New returns an engine in the selecting state.
func New(username string, ring *crypto.KeyRing, transport domain.TransportClient, trust domain.TrustService, out io.Writer) (*Engine, error) {
	proto := handshake.New(ring, crypto.NewSessionCipher())
	if err := proto.Begin(); err != nil {
		return nil, err
	}
	return &Engine{
		out:       out,
		username:  username,
		transport: transport,
		trust:     trust,
		proto:     proto,
	}, nil
}

// State returns the current session state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// HandleInput processes one line of console input according to the
// current state.
func (e *Engine) HandleInput(line string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case StateSelecting:
		return e.selectUserLocked(line)
	case StateInChat:
		if strings.TrimSpace(line) == TrustCommand {
			e.trustPeerLocked()
			return nil
		}
		return e.sendMessageLocked(line)
	case StateWaiting:
		return nil // nothing to type while waiting
	default:
		return ErrDisconnected
	}
}

func (e *Engine) selectUserLocked(input string) error {
	if e.waiting == nil {
		return nil // no list received yet
	}
	selected, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || selected < 0 || selected > len(e.waiting) {
		fmt.Fprintf(e.out, "Please type a number from 0 to %d\n", len(e.waiting))
		return nil
	}
	if selected == 0 {
		return e.joinWaitingLocked()
	}
	return e.connectToLocked(e.waiting[selected-1])
}

// joinWaitingLocked registers us on the waiting list.
func (e *Engine) joinWaitingLocked() error {
	pub, err := e.proto.OwnPublicKey()
	if err != nil {
		return err
	}
	if err := e.proto.Await(); err != nil {
		return err
	}
	e.state = StateWaiting
	fmt.Fprintln(e.out, "Sending public key to server...")
	if err := e.transport.RegisterAsWaiting(e.username, pub); err != nil {
		return err
	}
	fmt.Fprintln(e.out, "Waiting for other user")
	return nil
}

// connectToLocked initiates a pairing with the chosen waiting party.
func (e *Engine) connectToLocked(user domain.WaitingUser) error {
	fmt.Fprintln(e.out, "Generating session key...")
	hs, err := e.proto.Initiate(user.PublicKey)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, "Initialising encrypted connection...")
	if err := e.transport.ConnectToUser(e.username, user.ID, hs); err != nil {
		return err
	}
	if err := e.proto.Delivered(); err != nil {
		return err
	}
	e.enterChatLocked(user)
	return nil
}

func (e *Engine) sendMessageLocked(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	env, err := e.proto.Session().Seal(text)
	if err != nil {
		return err
	}
	return e.transport.SendMessage(env)
}

func (e *Engine) trustPeerLocked() {
	ok, err := e.trust.Trust(e.peer.Username, e.peer.PublicKey)
	if err == nil && ok {
		fmt.Fprintln(e.out, "User trusted.")
		return
	}
	fmt.Fprintln(e.out, "Could not trust user")
}

// enterChatLocked prints the connection banner with trust status and
// fingerprints, then moves to the in-chat state.
func (e *Engine) enterChatLocked(peer domain.WaitingUser) {
	e.peer = peer
	e.state = StateInChat

	trusted, err := e.trust.IsTrusted(peer.Username, peer.PublicKey)
	badge := notTrustedBadge
	if err == nil && trusted {
		badge = trustedBadge
	}

	fmt.Fprintf(e.out, "\nConnected with %s %s\n\n", peer.Username, badge)
	if own, err := e.proto.OwnFingerprint(); err == nil {
		fmt.Fprintf(e.out, "Your fingerprint: %s\n", own)
	}
	if !trusted {
		if fp, err := e.proto.PeerFingerprint(); err == nil {
			fmt.Fprintf(e.out, "%s's fingerprint: %s\n", peer.Username, fp)
		}
		fmt.Fprintf(e.out, "\nUser not trusted. Verify key fingerprints and type %s to trust user\n", TrustCommand)
	}
}

// OnWaitingList handles an UpdateWaitingList push. Ignored unless we are
// selecting. Entries with invalid names are dropped before display.
func (e *Engine) OnWaitingList(users []domain.WaitingUser) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateSelecting {
		return
	}

	valid := make([]domain.WaitingUser, 0, len(users))
	for _, u := range users {
		if domain.ValidUsername(u.Username) {
			valid = append(valid, u)
		}
	}
	e.waiting = valid

	fmt.Fprintln(e.out, "\nUsers:")
	if len(valid) == 0 {
		fmt.Fprintln(e.out, "None")
	}
	for i, u := range valid {
		badge := notTrustedBadge
		if trusted, err := e.trust.IsTrusted(u.Username, u.PublicKey); err == nil && trusted {
			badge = trustedBadge
		}
		fmt.Fprintf(e.out, "%d - %s %s\n", i+1, u.Username, badge)
	}
	fmt.Fprintln(e.out, "0 - join waiting list")
}

// OnAcceptConnection handles an inbound handshake. Ignored unless we are
// waiting. A signature failure is fatal for the session.
func (e *Engine) OnAcceptConnection(hs domain.Handshake, fromUsername string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateWaiting {
		return
	}

	fmt.Fprintln(e.out, "Initialising encrypted connection...")
	if err := e.proto.Accept(hs); err != nil {
		fmt.Fprintln(e.out, "Could not verify user identity.")
		e.disconnectLocked()
		return
	}
	e.enterChatLocked(domain.WaitingUser{Username: fromUsername, PublicKey: hs.PublicKey})
}

// OnNewMessage handles a relayed chat payload. Ignored unless in chat.
func (e *Engine) OnNewMessage(envelope, fromUsername string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateInChat {
		return
	}
	plain, err := e.proto.Session().Open(envelope)
	if err != nil {
		fmt.Fprintln(e.out, "Could not decrypt message.")
		return
	}
	fmt.Fprintf(e.out, "<%s> %s\n", fromUsername, plain)
}

// OnDisconnect handles the peer going away: the session key is discarded
// and the engine is done.
func (e *Engine) OnDisconnect() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.disconnectLocked()
}

func (e *Engine) disconnectLocked() {
	fmt.Fprintln(e.out, "Disconnected.")
	e.proto.Reset()
	e.state = StateDisconnected
}

// Compile-time assertion that Engine consumes transport events.
var _ domain.ClientEvents = (*Engine)(nil)
