// Package multiplayer drives one simulation as either the authoritative master
// or a predicting client. Transports never touch simulation state; they push
// raw payloads into bounded inboxes that the loop drains once per frame.
package multiplayer

import (
	"fmt"
	"time"
)

// Role selects which strategy a Loop runs.
type Role int

const (
	// RoleMaster owns the simulation and broadcasts snapshots.
	RoleMaster Role = iota

	// RoleClient predicts its own paddle and renders master snapshots.
	RoleClient
)

// String returns a human-readable name for the role.
func (r Role) String() string {
	switch r {
	case RoleMaster:
		return "master"
	case RoleClient:
		return "client"
	default:
		return "unknown"
	}
}

// SessionID identifies one transport connection.
type SessionID string

// MatchID uniquely identifies a match.
type MatchID string

// NewMatchID derives a match id from its start time.
func NewMatchID(start time.Time) MatchID {
	return MatchID(fmt.Sprintf("m-%d", start.UnixNano()))
}

// SpectatorSlot is the slot used by connections that only watch.
const SpectatorSlot = -1

// Broadcaster fans a payload out to every connected peer.
// Implementations must not block the caller.
type Broadcaster interface {
	Broadcast(data []byte)
}

// Sender delivers a payload to the master.
// Implementations must not block the caller.
type Sender interface {
	Send(data []byte) error
}

// BroadcastFunc adapts a function to Broadcaster.
type BroadcastFunc func(data []byte)

// Broadcast calls f(data).
func (f BroadcastFunc) Broadcast(data []byte) { f(data) }

// SendFunc adapts a function to Sender.
type SendFunc func(data []byte) error

// Send calls f(data).
func (f SendFunc) Send(data []byte) error { return f(data) }
