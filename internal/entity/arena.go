// Package entity provides the handle arena and component stores that hold
// every ship, seat, crew member and doctrine holder in the simulation.
// Handles are generation-checked: a handle to a destroyed entity never
// resolves again, even after its slot is reused.
package entity

import "fmt"

// Handle identifies an entity. The zero value is Null.
type Handle struct {
	Index uint32 `json:"index"`
	Gen   uint32 `json:"gen"`
}

// Null is the empty handle. It is never alive.
var Null = Handle{}

// IsNull reports whether h is the empty handle.
func (h Handle) IsNull() bool {
	return h.Gen == 0
}

// Less orders handles by index, then generation.
func (h Handle) Less(o Handle) bool {
	if h.Index != o.Index {
		return h.Index < o.Index
	}
	return h.Gen < o.Gen
}

func (h Handle) String() string {
	if h.IsNull() {
		return "null"
	}
	return fmt.Sprintf("%d:%d", h.Index, h.Gen)
}

// Arena allocates handles. Generations start at 1 so that Null stays invalid.
type Arena struct {
	gens  []uint32
	alive []bool
	free  []uint32
	count int
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Create allocates a new entity, reusing the most recently freed slot.
func (a *Arena) Create() Handle {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		a.alive[idx] = true
		a.count++
		return Handle{Index: idx, Gen: a.gens[idx]}
	}
	idx := uint32(len(a.gens))
	a.gens = append(a.gens, 1)
	a.alive = append(a.alive, true)
	a.count++
	return Handle{Index: idx, Gen: 1}
}

// Destroy frees the entity. Stale copies of h stop resolving immediately.
func (a *Arena) Destroy(h Handle) bool {
	if !a.Alive(h) {
		return false
	}
	a.alive[h.Index] = false
	a.gens[h.Index]++
	if a.gens[h.Index] == 0 {
		a.gens[h.Index] = 1 // wrapped
	}
	a.free = append(a.free, h.Index)
	a.count--
	return true
}

// Alive reports whether h refers to a live entity.
func (a *Arena) Alive(h Handle) bool {
	if h.IsNull() || int(h.Index) >= len(a.gens) {
		return false
	}
	return a.alive[h.Index] && a.gens[h.Index] == h.Gen
}

// Count returns the number of live entities.
func (a *Arena) Count() int {
	return a.count
}

// Handles returns every live handle in ascending index order.
func (a *Arena) Handles() []Handle {
	out := make([]Handle, 0, a.count)
	for i, ok := range a.alive {
		if ok {
			out = append(out, Handle{Index: uint32(i), Gen: a.gens[i]})
		}
	}
	return out
}
