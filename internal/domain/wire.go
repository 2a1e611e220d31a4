package domain

import "encoding/json"

// Message names carried on the transport. They are contractual: both the
// client and the rendezvous server match on these exact strings.
const (
	MsgRegisterAsWaiting = "RegisterAsWaiting"
	MsgUpdateWaitingList = "UpdateWaitingList"
	MsgConnectToUser     = "ConnectToUser"
	MsgAcceptConnection  = "AcceptConnection"
	MsgSendMessage       = "SendMessage"
	MsgNewMessage        = "NewMessage"
	MsgDisconnect        = "Disconnect"
)

// Frame is the envelope for every transport message: a name plus an
// optional JSON payload.
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewFrame builds a frame with the given name and payload. A nil payload
// produces a payload-less frame (Disconnect).
func NewFrame(msgType string, payload any) (Frame, error) {
	f := Frame{Type: msgType}
	if payload == nil {
		return f, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, err
	}
	f.Payload = raw
	return f, nil
}

// Decode unmarshals the frame payload into out.
func (f Frame) Decode(out any) error {
	return json.Unmarshal(f.Payload, out)
}

// RegisterAsWaiting is sent by a client that wants to appear on the
// waiting list.
type RegisterAsWaiting struct {
	Username  string `json:"username"`
	PublicKey []byte `json:"publicKey"`
}

// UpdateWaitingList is pushed by the server whenever the waiting list
// changes, and once to every freshly connected client.
type UpdateWaitingList struct {
	Users []WaitingUser `json:"users"`
}

// ConnectToUser is sent by an initiator to pair with a waiting party and
// deliver the signed, wrapped session key.
type ConnectToUser struct {
	Username   string `json:"username"`
	TargetID   string `json:"targetId"`
	WrappedKey []byte `json:"wrappedKey"`
	PublicKey  []byte `json:"publicKey"`
	Signature  []byte `json:"signature"`
}

// AcceptConnection is forwarded by the server to the chosen waiting party.
type AcceptConnection struct {
	WrappedKey []byte `json:"wrappedKey"`
	Username   string `json:"username"`
	PublicKey  []byte `json:"publicKey"`
	Signature  []byte `json:"signature"`
}

// SendMessage carries one encrypted chat payload from a paired client.
// The envelope is opaque ciphertext to the server.
type SendMessage struct {
	Envelope string `json:"envelope"`
}

// NewMessage delivers a relayed chat payload to the paired peer.
type NewMessage struct {
	Envelope string `json:"envelope"`
	Username string `json:"username"`
}
