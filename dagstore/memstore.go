package dagstore

import (
	"fmt"
	"sync"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/rony4d/go-casper-core/inter"
)

// MemStore is an in-memory DAG store. Safe for concurrent use.
type MemStore struct {
	mu       sync.RWMutex
	blocks   map[hash.Event]*inter.Block
	children map[hash.Event]hash.Events
}

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		blocks:   make(map[hash.Event]*inter.Block),
		children: make(map[hash.Event]hash.Events),
	}
}

// Insert appends a block. The block's parent must already be present,
// except for an era-start block, which carries a zero parent hash and rank
// 0. Rank must be the parent's rank plus 1.
func (s *MemStore) Insert(b *inter.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blocks[b.ID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, b.ID.String())
	}
	if b.Parent == hash.ZeroEvent {
		if b.Rank != 0 {
			return fmt.Errorf("%w: rootless block has rank %d", ErrBadRank, b.Rank)
		}
	} else {
		parent, ok := s.blocks[b.Parent]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingParent, b.Parent.String())
		}
		if b.Rank != parent.Rank+1 {
			return fmt.Errorf("%w: rank %d after parent rank %d", ErrBadRank, b.Rank, parent.Rank)
		}
	}

	s.blocks[b.ID] = b
	s.children[b.Parent] = append(s.children[b.Parent], b.ID)
	return nil
}

// Block implements Store.
func (s *MemStore) Block(id hash.Event) (*inter.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blocks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id.String())
	}
	return b, nil
}

// Rank implements Store.
func (s *MemStore) Rank(id hash.Event) (idx.Block, error) {
	b, err := s.Block(id)
	if err != nil {
		return 0, err
	}
	return b.Rank, nil
}

// Justifications implements Store.
func (s *MemStore) Justifications(id hash.Event) ([]inter.Justification, error) {
	b, err := s.Block(id)
	if err != nil {
		return nil, err
	}
	return b.Justifications, nil
}

// Children implements Store. The result is a copy in insertion order.
func (s *MemStore) Children(id hash.Event) (hash.Events, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.blocks[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id.String())
	}
	cc := make(hash.Events, len(s.children[id]))
	copy(cc, s.children[id])
	return cc, nil
}

// Len returns the number of stored blocks.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blocks)
}
