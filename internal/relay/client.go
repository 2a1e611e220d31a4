package relay

import (
	"sync"

	"github.com/gorilla/websocket"

	"enchat/internal/domain"
)

// Client is the websocket transport to the rendezvous server.
type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex // serializes writes
}

// Dial connects to the server's websocket endpoint (ws:// or wss://).
func Dial(serverURL string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(serverURL, nil)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

func (c *Client) send(msgType string, payload any) error {
	f, err := domain.NewFrame(msgType, payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(f)
}

// RegisterAsWaiting puts us on the server's waiting list.
func (c *Client) RegisterAsWaiting(username string, publicKey []byte) error {
	return c.send(domain.MsgRegisterAsWaiting, domain.RegisterAsWaiting{
		Username:  username,
		PublicKey: publicKey,
	})
}

// ConnectToUser asks the server to pair us with targetID and forward the
// handshake.
func (c *Client) ConnectToUser(username, targetID string, hs domain.Handshake) error {
	return c.send(domain.MsgConnectToUser, domain.ConnectToUser{
		Username:   username,
		TargetID:   targetID,
		WrappedKey: hs.WrappedKey,
		PublicKey:  hs.PublicKey,
		Signature:  hs.Signature,
	})
}

// SendMessage relays one encrypted envelope to our paired peer.
func (c *Client) SendMessage(envelope string) error {
	return c.send(domain.MsgSendMessage, domain.SendMessage{Envelope: envelope})
}

// Close tears the connection down.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Listen reads frames until the connection drops and dispatches them to
// events. Both a server-sent Disconnect frame and the connection itself
// going away surface as OnDisconnect; unknown or malformed frames are
// dropped.
func (c *Client) Listen(events domain.ClientEvents) error {
	for {
		var f domain.Frame
		if err := c.conn.ReadJSON(&f); err != nil {
			events.OnDisconnect()
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}

		switch f.Type {
		case domain.MsgUpdateWaitingList:
			var p domain.UpdateWaitingList
			if err := f.Decode(&p); err != nil {
				continue
			}
			events.OnWaitingList(p.Users)

		case domain.MsgAcceptConnection:
			var p domain.AcceptConnection
			if err := f.Decode(&p); err != nil {
				continue
			}
			events.OnAcceptConnection(domain.Handshake{
				WrappedKey: p.WrappedKey,
				PublicKey:  p.PublicKey,
				Signature:  p.Signature,
			}, p.Username)

		case domain.MsgNewMessage:
			var p domain.NewMessage
			if err := f.Decode(&p); err != nil {
				continue
			}
			events.OnNewMessage(p.Envelope, p.Username)

		case domain.MsgDisconnect:
			events.OnDisconnect()
		}
	}
}

// Compile-time assertion that Client implements the transport contract.
var _ domain.TransportClient = (*Client)(nil)
