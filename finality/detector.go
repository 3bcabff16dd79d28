package finality

import (
	"bytes"
	"errors"
	"math/big"
	"sort"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/rony4d/go-casper-core/dagstore"
	"github.com/rony4d/go-casper-core/inter"
)

var (
	ErrBadRFTT      = errors.New("fault tolerance threshold must be in [0, 1)")
	ErrUnknownBonds = errors.New("block creator is not bonded in this era")
)

// Detector decides finality for one era. It is not safe for concurrent use;
// the era engine serializes calls to it.
//
// Blocks must be inserted into the DAG store before being reported via
// OnNewBlock. Store read failures abort the current operation before any
// matrix mutation, so a failed call may be retried once storage recovers.
type Detector struct {
	store      dagstore.Store
	stakes     map[idx.ValidatorID]uint64
	totalStake uint64
	rFTT       *big.Rat

	matrix        *votingMatrix
	lastFinalized voteRef
}

// NewDetector builds a detector rooted at the era start block. The era
// start is considered finalized from the outset, and the voting matrix is
// seeded with it. A nil rFTT means zero fault tolerance (plain majority).
func NewDetector(store dagstore.Store, eraStart *inter.Block, bonds inter.Bonds, rFTT *big.Rat) (*Detector, error) {
	if err := bonds.Validate(); err != nil {
		return nil, err
	}
	if rFTT == nil {
		rFTT = new(big.Rat)
	}
	if rFTT.Sign() < 0 || rFTT.Cmp(big.NewRat(1, 1)) >= 0 {
		return nil, ErrBadRFTT
	}

	ids := make([]idx.ValidatorID, 0, len(bonds))
	stakes := make(map[idx.ValidatorID]uint64, len(bonds))
	total := uint64(0)
	for _, bond := range bonds {
		ids = append(ids, bond.ID)
		stakes[bond.ID] = uint64(bond.Stake)
		total += uint64(bond.Stake)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	})

	root := voteRef{block: eraStart.ID, rank: eraStart.Rank}
	return &Detector{
		store:         store,
		stakes:        stakes,
		totalStake:    total,
		rFTT:          new(big.Rat).Set(rFTT),
		matrix:        newVotingMatrix(ids, root),
		lastFinalized: root,
	}, nil
}

// LastFinalized returns the newest finalized block.
func (d *Detector) LastFinalized() hash.Event {
	return d.lastFinalized.block
}

// LastFinalizedRank returns the newest finalized block's rank.
func (d *Detector) LastFinalizedRank() idx.Block {
	return d.lastFinalized.rank
}

// LatestVote returns a validator's own newest block known to the detector.
func (d *Detector) LatestVote(v idx.ValidatorID) (hash.Event, idx.Block) {
	ref := d.matrix.latest[v]
	return ref.block, ref.rank
}

// SeenVote returns the newest block of creator that observer has
// transitively acknowledged through justifications.
func (d *Detector) SeenVote(observer, creator idx.ValidatorID) (hash.Event, idx.Block) {
	ref := d.matrix.seen[observer][creator]
	return ref.block, ref.rank
}

// claim is a justification edge awaiting rank resolution: observer states
// it has seen the given block of creator.
type claim struct {
	observer idx.ValidatorID
	creator  idx.ValidatorID
	block    hash.Event
}

// OnNewBlock folds a freshly stored block into the voting matrix and runs
// the finality check, returning the committees of every block it finalized,
// oldest first. The slice is empty when nothing new became final.
//
// The update happens in two phases: first all justification edges reachable
// from the block are gathered from the store, then the matrix is mutated.
// An unresolvable justification therefore leaves the matrix untouched.
func (d *Detector) OnNewBlock(b *inter.Block) ([]Committee, error) {
	if _, ok := d.stakes[b.Creator]; !ok {
		return nil, ErrUnknownBonds
	}

	// Phase 1: walk the justification closure. Every reachable block is a
	// block the new block's creator has transitively seen, and each visited
	// block's own justifications are claims by its creator.
	claims := make([]claim, 0, len(b.Justifications))
	ranks := map[hash.Event]idx.Block{b.ID: b.Rank}
	creators := map[hash.Event]idx.ValidatorID{b.ID: b.Creator}
	queue := make(hash.Events, 0, len(b.Justifications))
	for _, j := range b.Justifications {
		claims = append(claims, claim{b.Creator, j.Validator, j.Block})
		queue = append(queue, j.Block)
	}
	visited := map[hash.Event]bool{b.ID: true}
	for len(queue) > 0 {
		id := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		if visited[id] {
			continue
		}
		visited[id] = true

		jb, err := d.store.Block(id)
		if err != nil {
			return nil, err
		}
		ranks[id] = jb.Rank
		creators[id] = jb.Creator
		// The new block's creator has seen this one.
		claims = append(claims, claim{b.Creator, jb.Creator, id})
		// Below the finalized boundary the closure carries no information
		// that could still support a candidate.
		if jb.Rank <= d.lastFinalized.rank {
			continue
		}
		for _, j := range jb.Justifications {
			claims = append(claims, claim{jb.Creator, j.Validator, j.Block})
			queue = append(queue, j.Block)
		}
	}
	// Resolve any claim whose target sits outside the walked closure.
	for _, c := range claims {
		if _, ok := ranks[c.block]; ok {
			continue
		}
		rank, err := d.store.Rank(c.block)
		if err != nil {
			return nil, err
		}
		ranks[c.block] = rank
	}

	// Phase 2: apply. From here on only the matrix changes; no store reads.
	for _, c := range claims {
		ref := voteRef{block: c.block, rank: ranks[c.block]}
		d.matrix.updateSeen(c.observer, c.creator, ref)
		d.matrix.updateLatest(c.creator, ref)
	}
	self := voteRef{block: b.ID, rank: b.Rank}
	d.matrix.updateSeen(b.Creator, b.Creator, self)
	d.matrix.updateLatest(b.Creator, self)

	// Phase 3: try to finalize, cascading as far as support allows.
	return d.finalizeCascade()
}

// finalizeCascade repeatedly picks the next candidate above the finalized
// tip and checks its support, advancing the tip while quorum holds.
func (d *Detector) finalizeCascade() ([]Committee, error) {
	var out []Committee
	for {
		candidates, err := d.candidates()
		if err != nil {
			return out, err
		}
		finalized := false
		for _, cand := range candidates {
			committee, err := d.support(cand)
			if err != nil {
				return out, err
			}
			if committee == nil {
				continue
			}
			out = append(out, *committee)
			d.lastFinalized = cand
			finalized = true
			break
		}
		if !finalized {
			return out, nil
		}
	}
}

// candidates returns the children of the finalized tip in deterministic
// order. All children share the same rank, so hash order decides.
func (d *Detector) candidates() ([]voteRef, error) {
	children, err := d.store.Children(d.lastFinalized.block)
	if err != nil {
		return nil, err
	}
	sort.Slice(children, func(i, j int) bool {
		return bytes.Compare(children[i].Bytes(), children[j].Bytes()) < 0
	})
	refs := make([]voteRef, 0, len(children))
	for _, id := range children {
		rank, err := d.store.Rank(id)
		if err != nil {
			return nil, err
		}
		refs = append(refs, voteRef{block: id, rank: rank})
	}
	return refs, nil
}

// support sums the stake of validators whose latest vote descends from the
// candidate and returns the committee if it reaches quorum, nil otherwise.
// Quorum is stake >= total/2 + total*rFTT, evaluated in exact arithmetic.
func (d *Detector) support(cand voteRef) (*Committee, error) {
	supporters := make([]idx.ValidatorID, 0, len(d.matrix.ids))
	stake := uint64(0)
	for _, v := range d.matrix.ids {
		vote := d.matrix.latest[v]
		ok, err := d.descends(vote, cand)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		supporters = append(supporters, v)
		stake += d.stakes[v]
	}

	quorum := new(big.Rat).Add(big.NewRat(1, 2), d.rFTT)
	quorum.Mul(quorum, new(big.Rat).SetUint64(d.totalStake))
	if new(big.Rat).SetUint64(stake).Cmp(quorum) < 0 {
		return nil, nil
	}
	return &Committee{
		Block:      cand.block,
		Validators: supporters,
		Stake:      stake,
	}, nil
}

// descends reports whether ref is the candidate or one of its descendants,
// climbing the parent chain. Ranks bound the climb: once at or below the
// candidate's rank, only equality decides.
func (d *Detector) descends(ref voteRef, cand voteRef) (bool, error) {
	cur := ref
	for cur.rank > cand.rank {
		b, err := d.store.Block(cur.block)
		if err != nil {
			return false, err
		}
		// rank is always the parent's rank plus 1, the store enforces it
		cur = voteRef{block: b.Parent, rank: cur.rank - 1}
	}
	return cur.block == cand.block, nil
}
