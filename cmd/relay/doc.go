// Package main runs the rendezvous server: an untrusted middleman that
// matches waiting parties and relays opaque frames between paired peers.
//
// Endpoint
//
//	GET /chat
//	    Upgrade to a websocket carrying named JSON frames. A fresh
//	    connection immediately receives the current waiting list.
//
// Behaviour
//
//   - All state is held in memory and lost on process exit.
//   - The server never sees plaintext or private keys; handshake and chat
//     payloads are opaque to it.
//   - The default listen address is :8080.
package main
