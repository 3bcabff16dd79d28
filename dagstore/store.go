// Package dagstore defines the storage boundary the consensus core reads
// the justification DAG through, plus an in-memory implementation backing
// tests, local networks and the launcher demo.
//
// Durable block storage is an external collaborator; the core only depends
// on the Store interface and treats its failures as transient: a failed
// query aborts the current operation without corrupting consensus state,
// and the caller may retry once storage recovers.
package dagstore

import (
	"errors"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/rony4d/go-casper-core/inter"
)

var (
	ErrNotFound      = errors.New("block is not in the DAG store")
	ErrAlreadyExists = errors.New("block is already in the DAG store")
	ErrMissingParent = errors.New("block's parent is not in the DAG store")
	ErrBadRank       = errors.New("block's rank must be its parent's rank plus 1")
)

// Store is the read surface of DAG storage the consensus core depends on.
type Store interface {
	// Block returns the block with the given ID.
	Block(id hash.Event) (*inter.Block, error)
	// Rank returns the block's topological height.
	Rank(id hash.Event) (idx.Block, error)
	// Justifications returns the block's justification list.
	Justifications(id hash.Event) ([]inter.Justification, error)
	// Children returns the IDs of all known blocks extending the given one.
	Children(id hash.Event) (hash.Events, error)
}

// Inserter is the write surface; the engine appends validated blocks
// through it before running finality detection.
type Inserter interface {
	Insert(b *inter.Block) error
}
