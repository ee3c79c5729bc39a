// Package loadstate tracks, per resource key, whether the full image has
// finished loading and derives which of placeholder or image is visible.
//
// Each key moves Placeholder → Loaded at most once. Keys are independent:
// they live in separate shards, and a transition on one key never touches
// another.
package loadstate

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// State is the load state of one resource.
type State uint8

const (
	// Placeholder is the initial state: the decoded BlurHash is shown.
	Placeholder State = iota
	// Loaded is terminal: the real image is shown.
	Loaded
)

func (s State) String() string {
	switch s {
	case Placeholder:
		return "placeholder"
	case Loaded:
		return "loaded"
	default:
		return "unknown"
	}
}

const shardCount = 16

type entry struct {
	state State
	done  chan struct{} // closed on transition to Loaded
}

type shard struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// Coordinator owns the key → state mapping. The zero value is not usable;
// call New.
type Coordinator struct {
	shards [shardCount]shard
}

// New returns an empty coordinator.
func New() *Coordinator {
	c := &Coordinator{}
	for i := range c.shards {
		c.shards[i].entries = make(map[string]*entry)
	}
	return c
}

func (c *Coordinator) shardFor(key string) *shard {
	return &c.shards[xxhash.Sum64String(key)%shardCount]
}

// lookup returns the entry for key, creating it in Placeholder.
// s.mu must be held.
func (s *shard) lookup(key string) *entry {
	e, ok := s.entries[key]
	if !ok {
		e = &entry{state: Placeholder, done: make(chan struct{})}
		s.entries[key] = e
	}
	return e
}

// Track registers key in Placeholder. Known keys are left as they are.
func (c *Coordinator) Track(key string) {
	s := c.shardFor(key)
	s.mu.Lock()
	s.lookup(key)
	s.mu.Unlock()
}

// OnImageLoad records that the image for key finished loading. It is
// idempotent, and an unknown key is created directly in Loaded.
func (c *Coordinator) OnImageLoad(key string) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.lookup(key)
	if e.state == Loaded {
		return
	}
	e.state = Loaded
	close(e.done)
}

// IsLoaded reports whether key has reached Loaded. Unknown keys are not.
func (c *Coordinator) IsLoaded(key string) bool {
	return c.State(key) == Loaded
}

// State returns the state of key; unknown keys report Placeholder.
func (c *Coordinator) State(key string) State {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		return e.state
	}
	return Placeholder
}

// Subscribe returns a channel that is closed once key is Loaded. The key
// is tracked if it was not already.
func (c *Coordinator) Subscribe(key string) <-chan struct{} {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(key).done
}

// Snapshot copies the current state of every known key.
func (c *Coordinator) Snapshot() map[string]State {
	out := make(map[string]State)
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		for k, e := range s.entries {
			out[k] = e.state
		}
		s.mu.Unlock()
	}
	return out
}

// Len returns the number of known keys.
func (c *Coordinator) Len() int {
	n := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		n += len(s.entries)
		s.mu.Unlock()
	}
	return n
}
