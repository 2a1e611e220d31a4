package rendezvous

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"enchat/internal/domain"
)

var (
	// ErrInvalidName is returned when a display name fails the username
	// policy. Fatal for the requesting connection.
	ErrInvalidName = errors.New("rendezvous: invalid display name")

	// ErrNameTaken is returned when a display name collides with a party
	// that is currently waiting or paired.
	ErrNameTaken = errors.New("rendezvous: display name already in use")

	// ErrAlreadyRegistered is returned when a connection that already has
	// a party record registers or pairs again.
	ErrAlreadyRegistered = errors.New("rendezvous: connection already registered")

	// ErrNotFound is returned when a pairing target id resolves to no
	// waiting party.
	ErrNotFound = errors.New("rendezvous: no such waiting party")

	// ErrAlreadyPaired is returned when the pairing target was taken by
	// another initiator first.
	ErrAlreadyPaired = errors.New("rendezvous: party already paired")

	// ErrInvalidHandshake is returned when a pairing request carries an
	// incomplete handshake envelope.
	ErrInvalidHandshake = errors.New("rendezvous: malformed handshake envelope")
)

// party is one connection's record. Pairing is stored as a symmetric pair
// of handles rather than object references, so removing one side can never
// leave a dangling pointer.
type party struct {
	id        string
	handle    domain.HandleID
	username  string
	publicKey []byte
	waiting   bool
	peer      domain.HandleID // zero while unpaired
}

// Service is the rendezvous state machine. Safe for concurrent use; every
// state-changing operation is atomic with respect to the others.
type Service struct {
	mu       sync.Mutex
	byHandle map[domain.HandleID]*party
	byID     map[string]domain.HandleID
	order    []domain.HandleID // registration order of waiting parties
}

// New returns an empty rendezvous service.
func New() *Service {
	return &Service{
		byHandle: make(map[domain.HandleID]*party),
		byID:     make(map[string]domain.HandleID),
	}
}

// RegisterWaiting adds a connection to the waiting list under the given
// display name and public key. Failure is fatal for the connection: the
// caller is expected to close it.
func (s *Service) RegisterWaiting(handle domain.HandleID, username string, publicKey []byte) (domain.WaitingUser, error) {
	if !domain.ValidUsername(username) {
		return domain.WaitingUser{}, ErrInvalidName
	}
	if len(publicKey) == 0 {
		return domain.WaitingUser{}, ErrInvalidHandshake
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byHandle[handle]; exists {
		return domain.WaitingUser{}, ErrAlreadyRegistered
	}
	if s.nameInUseLocked(username) {
		return domain.WaitingUser{}, ErrNameTaken
	}

	p := &party{
		id:        uuid.NewString(),
		handle:    handle,
		username:  username,
		publicKey: append([]byte(nil), publicKey...),
		waiting:   true,
	}
	s.byHandle[handle] = p
	s.byID[p.id] = handle
	s.order = append(s.order, handle)

	return domain.WaitingUser{ID: p.id, Username: p.username, PublicKey: p.publicKey}, nil
}

// WaitingUsers returns a snapshot of the parties currently waiting, in
// registration order. Paired parties are never included, and private key
// material is never held here to begin with.
func (s *Service) WaitingUsers() []domain.WaitingUser {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]domain.WaitingUser, 0, len(s.order))
	for _, handle := range s.order {
		p, ok := s.byHandle[handle]
		if !ok || !p.waiting {
			continue
		}
		users = append(users, domain.WaitingUser{ID: p.id, Username: p.username, PublicKey: p.publicKey})
	}
	return users
}

// Pair claims the waiting party identified by targetID for the initiator
// and records the mutual pairing. The target-is-still-waiting check and
// the claim happen under one lock: of two racing initiators, exactly one
// wins and the other gets ErrAlreadyPaired. The caller forwards the
// handshake to the returned target handle after this commits.
func (s *Service) Pair(initiator domain.HandleID, username, targetID string, hs domain.Handshake) (domain.HandleID, error) {
	if !domain.ValidUsername(username) {
		return "", ErrInvalidName
	}
	if len(hs.WrappedKey) == 0 || len(hs.PublicKey) == 0 || len(hs.Signature) == 0 {
		return "", ErrInvalidHandshake
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byHandle[initiator]; exists {
		return "", ErrAlreadyRegistered
	}
	if s.nameInUseLocked(username) {
		return "", ErrNameTaken
	}

	targetHandle, ok := s.byID[targetID]
	if !ok {
		return "", ErrNotFound
	}
	target := s.byHandle[targetHandle]
	if !target.waiting || target.peer != "" {
		return "", ErrAlreadyPaired
	}

	p := &party{
		id:       uuid.NewString(),
		handle:   initiator,
		username: username,
		peer:     targetHandle,
	}
	s.byHandle[initiator] = p
	s.byID[p.id] = initiator

	target.waiting = false
	target.peer = initiator
	s.dropFromOrderLocked(targetHandle)

	return targetHandle, nil
}

// Relay resolves the paired peer of a sending connection. A sender with
// no peer (unknown handle, or a pairing torn down by a racing disconnect)
// yields ok=false and the payload is silently dropped by the caller.
func (s *Service) Relay(from domain.HandleID) (to domain.HandleID, fromUsername string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.byHandle[from]
	if !exists || p.peer == "" {
		return "", "", false
	}
	return p.peer, p.username, true
}

// Disconnect removes a connection's record. If it was paired, the peer's
// side of the pairing is cleared in the same critical section and the
// peer's handle is returned so the caller can notify it. wasWaiting tells
// the caller whether the waiting list changed. Idempotent: a handle
// without a record is a no-op.
func (s *Service) Disconnect(handle domain.HandleID) (peer domain.HandleID, wasWaiting, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.byHandle[handle]
	if !exists {
		return "", false, false
	}

	delete(s.byHandle, handle)
	delete(s.byID, p.id)
	s.dropFromOrderLocked(handle)

	if p.peer != "" {
		if other, stillThere := s.byHandle[p.peer]; stillThere && other.peer == handle {
			other.peer = ""
			return p.peer, p.waiting, true
		}
	}
	return "", p.waiting, true
}

func (s *Service) nameInUseLocked(username string) bool {
	for _, p := range s.byHandle {
		if p.username == username {
			return true
		}
	}
	return false
}

func (s *Service) dropFromOrderLocked(handle domain.HandleID) {
	for i, h := range s.order {
		if h == handle {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
