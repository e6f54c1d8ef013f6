package transport

import (
	"errors"
	"sort"
	"sync"

	"github.com/vovakirdan/tui-pong/internal/multiplayer"
)

var (
	// ErrSeatTaken is returned when a slot already has a connected player.
	ErrSeatTaken = errors.New("transport: seat taken")

	// ErrBadSlot is returned for slots outside the match.
	ErrBadSlot = errors.New("transport: slot out of range")
)

// hostSession owns slots the hosting process plays itself.
const hostSession multiplayer.SessionID = "host"

// seatRegistry tracks connected peers and which slots they occupy.
// Thread-safe for concurrent access.
type seatRegistry struct {
	mu      sync.RWMutex
	players int
	peers   map[multiplayer.SessionID]*peer
	seats   map[int]multiplayer.SessionID
}

func newSeatRegistry(players int) *seatRegistry {
	return &seatRegistry{
		players: players,
		peers:   make(map[multiplayer.SessionID]*peer),
		seats:   make(map[int]multiplayer.SessionID),
	}
}

// claim reserves p's slot unless it is a spectator. The peer receives
// broadcasts only once attached.
func (r *seatRegistry) claim(p *peer) error {
	if p.slot < multiplayer.SpectatorSlot || p.slot >= r.players {
		return ErrBadSlot
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.slot != multiplayer.SpectatorSlot {
		if _, taken := r.seats[p.slot]; taken {
			return ErrSeatTaken
		}
		r.seats[p.slot] = p.id
	}
	return nil
}

// reserve takes slot for the host so no peer can claim it.
func (r *seatRegistry) reserve(slot int) error {
	if slot < 0 || slot >= r.players {
		return ErrBadSlot
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.seats[slot]; taken {
		return ErrSeatTaken
	}
	r.seats[slot] = hostSession
	return nil
}

// attach makes a connected peer visible to broadcasts.
func (r *seatRegistry) attach(p *peer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.peers[p.id] = p
}

// release removes the peer and frees its slot.
func (r *seatRegistry) release(id multiplayer.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.peers, id)
	for slot, owner := range r.seats {
		if owner == id {
			delete(r.seats, slot)
		}
	}
}

// each calls fn for every registered peer under the read lock.
func (r *seatRegistry) each(fn func(*peer)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.peers {
		fn(p)
	}
}

// count returns the number of connected peers.
func (r *seatRegistry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.peers)
}

// occupied returns the taken slots in ascending order.
func (r *seatRegistry) occupied() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]int, 0, len(r.seats))
	for slot := range r.seats {
		out = append(out, slot)
	}
	sort.Ints(out)
	return out
}
