// Package trust implements trust-on-first-use pinning of peer keys. A
// peer is trusted only after an explicit user action, a name can be
// pinned exactly once, and a later key that hashes differently never
// matches the pin.
package trust
