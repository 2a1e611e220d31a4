// Package relay implements the transport between clients and the
// rendezvous server: named JSON frames over a persistent websocket. The
// server side (Hub) owns the connection set and feeds the rendezvous
// state machine; the client side (Client) sends the outbound message set
// and dispatches inbound frames to a domain.ClientEvents handler.
package relay
