package relay

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"enchat/internal/domain"
	"enchat/internal/rendezvous"
)

// conn is one connected client with serialized writes.
type conn struct {
	handle domain.HandleID
	ws     *websocket.Conn
	mu     sync.Mutex
}

func (c *conn) write(f domain.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(f)
}

// Hub accepts websocket connections and drives the rendezvous service.
// All rendezvous mutations commit before any frame is written out, so no
// network I/O ever happens inside the service's lock.
type Hub struct {
	svc *rendezvous.Service
	log *logrus.Logger

	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[domain.HandleID]*conn
}

// NewHub returns a hub around the given rendezvous service.
func NewHub(svc *rendezvous.Service, log *logrus.Logger) *Hub {
	return &Hub{
		svc:   svc,
		log:   log,
		conns: make(map[domain.HandleID]*conn),
		upgrader: websocket.Upgrader{
			// The relay carries only opaque ciphertext; any origin may
			// connect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the connection and runs its read loop until it drops.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	c := &conn{handle: domain.HandleID(uuid.NewString()), ws: ws}
	h.mu.Lock()
	h.conns[c.handle] = c
	h.mu.Unlock()

	h.log.WithField("handle", c.handle).Info("client connected")

	// A fresh client gets the current waiting list right away.
	h.sendWaitingList(c)

	h.readLoop(c)
}

func (h *Hub) readLoop(c *conn) {
	defer h.drop(c)

	for {
		var f domain.Frame
		if err := c.ws.ReadJSON(&f); err != nil {
			return
		}

		switch f.Type {
		case domain.MsgRegisterAsWaiting:
			if !h.handleRegister(c, f) {
				return
			}
		case domain.MsgConnectToUser:
			if !h.handleConnect(c, f) {
				return
			}
		case domain.MsgSendMessage:
			h.handleSend(c, f)
		default:
			h.log.WithFields(logrus.Fields{
				"handle": c.handle,
				"type":   f.Type,
			}).Debug("ignoring unexpected frame")
		}
	}
}

// handleRegister processes RegisterAsWaiting. A rejected registration is
// fatal for the connection, mirroring the pairing rules.
func (h *Hub) handleRegister(c *conn, f domain.Frame) bool {
	var p domain.RegisterAsWaiting
	if err := f.Decode(&p); err != nil {
		h.log.WithField("handle", c.handle).Warn("malformed RegisterAsWaiting")
		return false
	}

	user, err := h.svc.RegisterWaiting(c.handle, p.Username, p.PublicKey)
	if err != nil {
		h.log.WithFields(logrus.Fields{
			"handle":   c.handle,
			"username": p.Username,
		}).WithError(err).Warn("registration rejected")
		return false
	}

	h.log.WithFields(logrus.Fields{
		"handle":   c.handle,
		"username": user.Username,
		"id":       user.ID,
	}).Info("party waiting")

	h.broadcastWaitingList()
	return true
}

// handleConnect processes ConnectToUser: pair, then forward the handshake
// to the target and refresh everyone's list.
func (h *Hub) handleConnect(c *conn, f domain.Frame) bool {
	var p domain.ConnectToUser
	if err := f.Decode(&p); err != nil {
		h.log.WithField("handle", c.handle).Warn("malformed ConnectToUser")
		return false
	}

	hs := domain.Handshake{
		WrappedKey: p.WrappedKey,
		PublicKey:  p.PublicKey,
		Signature:  p.Signature,
	}
	target, err := h.svc.Pair(c.handle, p.Username, p.TargetID, hs)
	if err != nil {
		h.log.WithFields(logrus.Fields{
			"handle":   c.handle,
			"username": p.Username,
			"target":   p.TargetID,
		}).WithError(err).Warn("pairing rejected")
		return false
	}

	h.log.WithFields(logrus.Fields{
		"initiator": c.handle,
		"target":    target,
	}).Info("parties paired")

	accept, err := domain.NewFrame(domain.MsgAcceptConnection, domain.AcceptConnection{
		WrappedKey: p.WrappedKey,
		Username:   p.Username,
		PublicKey:  p.PublicKey,
		Signature:  p.Signature,
	})
	if err == nil {
		h.sendTo(target, accept)
	}
	h.broadcastWaitingList()
	return true
}

// handleSend relays an opaque envelope to the sender's paired peer. A
// sender without a peer is a silent drop: the message may have crossed a
// disconnect.
func (h *Hub) handleSend(c *conn, f domain.Frame) {
	var p domain.SendMessage
	if err := f.Decode(&p); err != nil {
		return
	}
	peer, from, ok := h.svc.Relay(c.handle)
	if !ok {
		return
	}
	msg, err := domain.NewFrame(domain.MsgNewMessage, domain.NewMessage{
		Envelope: p.Envelope,
		Username: from,
	})
	if err == nil {
		h.sendTo(peer, msg)
	}
}

// drop resolves a gone connection: remove its rendezvous record, notify a
// paired peer, and refresh the list if the waiting set changed.
func (h *Hub) drop(c *conn) {
	_ = c.ws.Close()

	h.mu.Lock()
	delete(h.conns, c.handle)
	h.mu.Unlock()

	peer, wasWaiting, ok := h.svc.Disconnect(c.handle)
	if !ok {
		return
	}
	h.log.WithField("handle", c.handle).Info("client disconnected")

	if peer != "" {
		if f, err := domain.NewFrame(domain.MsgDisconnect, nil); err == nil {
			h.sendTo(peer, f)
		}
	}
	if wasWaiting {
		h.broadcastWaitingList()
	}
}

func (h *Hub) sendTo(handle domain.HandleID, f domain.Frame) {
	h.mu.Lock()
	c, ok := h.conns[handle]
	h.mu.Unlock()
	if !ok {
		return
	}
	if err := c.write(f); err != nil {
		h.log.WithField("handle", handle).WithError(err).Debug("write failed")
	}
}

func (h *Hub) sendWaitingList(c *conn) {
	f, err := domain.NewFrame(domain.MsgUpdateWaitingList, domain.UpdateWaitingList{
		Users: h.svc.WaitingUsers(),
	})
	if err != nil {
		return
	}
	if err := c.write(f); err != nil {
		h.log.WithField("handle", c.handle).WithError(err).Debug("write failed")
	}
}

func (h *Hub) broadcastWaitingList() {
	f, err := domain.NewFrame(domain.MsgUpdateWaitingList, domain.UpdateWaitingList{
		Users: h.svc.WaitingUsers(),
	})
	if err != nil {
		return
	}

	h.mu.Lock()
	targets := make([]*conn, 0, len(h.conns))
	for _, c := range h.conns {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		if err := c.write(f); err != nil {
			h.log.WithField("handle", c.handle).WithError(err).Debug("write failed")
		}
	}
}
