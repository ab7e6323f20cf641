package palette

import (
	"math/rand/v2"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// ActorColorTable assigns each simulated actor a random colour the first
// time its instance id is seen. Assigned colours never change for the
// lifetime of the table.
//
// Writers are the collaborators that discover actors; decoders only call
// Lookup. All methods are safe for concurrent use.
type ActorColorTable struct {
	mu     sync.RWMutex
	colors map[uint32]r3.Vec
	rng    *rand.Rand
}

// NewActorColorTable returns a table seeded from the wall clock.
func NewActorColorTable() *ActorColorTable {
	seed := uint64(time.Now().UnixNano())
	return NewSeededActorColorTable(seed)
}

// NewSeededActorColorTable returns a table whose colour sequence is fully
// determined by seed.
func NewSeededActorColorTable(seed uint64) *ActorColorTable {
	return &ActorColorTable{
		colors: make(map[uint32]r3.Vec),
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Assign returns the colour for id, drawing a new one if id is unseen.
func (t *ActorColorTable) Assign(id uint32) r3.Vec {
	t.mu.RLock()
	c, ok := t.colors[id]
	t.mu.RUnlock()
	if ok {
		return c
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if c, ok := t.colors[id]; ok {
		return c
	}
	c = r3.Vec{X: t.rng.Float64(), Y: t.rng.Float64(), Z: t.rng.Float64()}
	t.colors[id] = c
	return c
}

// AssignAll assigns colours to every id in ids and returns how many were new.
func (t *ActorColorTable) AssignAll(ids []uint32) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	added := 0
	for _, id := range ids {
		if _, ok := t.colors[id]; ok {
			continue
		}
		t.colors[id] = r3.Vec{X: t.rng.Float64(), Y: t.rng.Float64(), Z: t.rng.Float64()}
		added++
	}
	return added
}

// Lookup returns the colour for id without assigning one.
func (t *ActorColorTable) Lookup(id uint32) (r3.Vec, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.colors[id]
	return c, ok
}

// Len returns the number of assigned actors.
func (t *ActorColorTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.colors)
}

// Preassign pins id to c when id has no colour yet. It returns false and
// leaves the table unchanged if id was already assigned.
func (t *ActorColorTable) Preassign(id uint32, c r3.Vec) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.colors[id]; ok {
		return false
	}
	t.colors[id] = r3.Vec{X: clampUnit(c.X), Y: clampUnit(c.Y), Z: clampUnit(c.Z)}
	return true
}
