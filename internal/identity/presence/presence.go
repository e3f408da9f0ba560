// Package presence tracks which accounts currently hold a live
// connection. It is an in-process registry, not persisted state: a
// restart empties it, which is the correct answer after a restart.
package presence

import (
	"hash/fnv"
	"sync"
)

const shardCount = 32

type shard struct {
	mu    sync.RWMutex
	conns map[string]int // account id -> live connection count
}

// Registry is a sharded connection counter keyed by account id. An
// account with several tabs or devices stays online until the last
// connection disconnects.
type Registry struct {
	shards [shardCount]*shard
}

func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i] = &shard{conns: make(map[string]int)}
	}
	return r
}

func (r *Registry) shardFor(accountID string) *shard {
	h := fnv.New32a()
	h.Write([]byte(accountID))
	return r.shards[h.Sum32()%shardCount]
}

// Connect records one live connection for the account.
func (r *Registry) Connect(accountID string) {
	s := r.shardFor(accountID)
	s.mu.Lock()
	s.conns[accountID]++
	s.mu.Unlock()
}

// Disconnect drops one connection; the account goes offline when its
// count reaches zero. Extra disconnects are ignored.
func (r *Registry) Disconnect(accountID string) {
	s := r.shardFor(accountID)
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.conns[accountID]
	if !ok {
		return
	}
	if n <= 1 {
		delete(s.conns, accountID)
		return
	}
	s.conns[accountID] = n - 1
}

// IsOnline reports whether the account has at least one live connection.
func (r *Registry) IsOnline(accountID string) bool {
	s := r.shardFor(accountID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conns[accountID] > 0
}

// Online returns the ids of all accounts currently connected.
func (r *Registry) Online() []string {
	var ids []string
	for _, s := range r.shards {
		s.mu.RLock()
		for id := range s.conns {
			ids = append(ids, id)
		}
		s.mu.RUnlock()
	}
	return ids
}
