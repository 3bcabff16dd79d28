package era

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/event"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-casper-core/casper"
	"github.com/rony4d/go-casper-core/dagstore"
	"github.com/rony4d/go-casper-core/finality"
	"github.com/rony4d/go-casper-core/inter"
	"github.com/rony4d/go-casper-core/sequencer"
)

var (
	ErrWrongLeader  = errors.New("block creator is not the elected leader for its rank")
	ErrStaleBlock   = errors.New("block's rank is not above the current era start")
	ErrBadMagicBits = errors.New("block's magic bits don't match the era boundary rules")
)

// DAG combines the store surfaces the engine needs.
type DAG interface {
	dagstore.Store
	dagstore.Inserter
}

// FinalizedEvent is published on the engine's feed for every committee the
// detector produces.
type FinalizedEvent struct {
	Era       idx.Epoch
	Committee finality.Committee
}

// Engine drives consensus for one chain: it validates each block's leader
// against the era's schedule, appends it to the DAG store, runs finality
// detection and rotates eras at finalized boundaries. A mutex serializes
// ProcessBlock; everything else is safe to call concurrently.
type Engine struct {
	mu       sync.Mutex
	log      *logrus.Entry
	dag      DAG
	rules    casper.Rules
	versions *casper.VersionRegistry

	era *Era
	seq *sequencer.Sequencer
	det *finality.Detector

	feed event.Feed
}

// NewEngine sets up the engine on the genesis era. The era's Start and
// StartRank are taken from the start block; the block is inserted into the
// store when absent. A nil logger falls back to the logrus standard logger.
func NewEngine(dag DAG, rules casper.Rules, start *inter.Block, era0 *Era, logger *logrus.Logger) (*Engine, error) {
	versions, err := rules.VersionRegistry()
	if err != nil {
		return nil, fmt.Errorf("invalid version table of %s: %w", rules.Name, err)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	if err := dag.Insert(start); err != nil && !errors.Is(err, dagstore.ErrAlreadyExists) {
		return nil, err
	}
	era0.Start = start.ID
	era0.StartRank = start.Rank

	e := &Engine{
		log:      logger.WithField("module", "era"),
		dag:      dag,
		rules:    rules,
		versions: versions,
		era:      era0,
	}
	if err := e.enterEra(era0, start); err != nil {
		return nil, err
	}
	e.log.WithFields(logrus.Fields{
		"network": rules.Name,
		"era":     era0.Epoch,
		"start":   start.ID.String(),
	}).Info("engine started")
	return e, nil
}

// enterEra builds the era's sequencer and detector. Callers hold the mutex
// (or are the constructor).
func (e *Engine) enterEra(era *Era, start *inter.Block) error {
	seq, err := sequencer.New(era.Seed, era.Bonds)
	if err != nil {
		return err
	}
	det, err := finality.NewDetector(e.dag, start, era.Bonds, era.RFTT)
	if err != nil {
		return err
	}
	e.era, e.seq, e.det = era, seq, det
	return nil
}

// ProcessBlock validates, stores and folds in one block, returning the
// committees of every block it finalized. A block whose creator does not
// match the era's leader schedule for its rank is rejected before storage.
//
// Committees returned alongside a non-nil error are still valid: the
// detector finalized them before hitting a transient store failure.
func (e *Engine) ProcessBlock(b *inter.Block) ([]finality.Committee, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if b.Rank <= e.era.StartRank {
		return nil, fmt.Errorf("%w: rank %d, era starts at %d", ErrStaleBlock, b.Rank, e.era.StartRank)
	}
	tick := uint64(b.Rank - e.era.StartRank)
	if leader := e.seq.Elect(tick); leader != b.Creator {
		return nil, fmt.Errorf("%w: rank %d expects validator %d, got %d", ErrWrongLeader, b.Rank, leader, b.Creator)
	}
	// Boundary candidates commit the magic bits the next era's seed folds
	// in; everywhere else the bits must be absent.
	if b.Rank >= e.era.EndRank() {
		if len(b.MagicBits) != e.rules.Eras.MagicBitsLen {
			return nil, fmt.Errorf("%w: got %d bits, boundary needs %d", ErrBadMagicBits, len(b.MagicBits), e.rules.Eras.MagicBitsLen)
		}
	} else if len(b.MagicBits) != 0 {
		return nil, fmt.Errorf("%w: got %d bits before the era boundary", ErrBadMagicBits, len(b.MagicBits))
	}

	if err := e.dag.Insert(b); err != nil {
		return nil, err
	}
	e.log.WithFields(logrus.Fields{
		"block":   b.ID.String(),
		"rank":    b.Rank,
		"creator": b.Creator,
		"version": e.versions.VersionForBlock(b).String(),
	}).Debug("block accepted")

	committees, err := e.det.OnNewBlock(b)
	for _, c := range committees {
		e.feed.Send(FinalizedEvent{Era: e.era.Epoch, Committee: c})
		e.log.WithFields(logrus.Fields{
			"era":        e.era.Epoch,
			"block":      c.Block.String(),
			"stake":      c.Stake,
			"validators": len(c.Validators),
		}).Info("block finalized")
	}
	if err != nil {
		return committees, err
	}
	if err := e.maybeRotate(); err != nil {
		return committees, err
	}
	return committees, nil
}

// maybeRotate hands over to the next era once finalization crossed the
// current era's end rank. The newest finalized block becomes the boundary:
// its magic bits are folded into the seed and all unfinalized branches of
// the old era are abandoned.
func (e *Engine) maybeRotate() error {
	if e.det.LastFinalizedRank() < e.era.EndRank() {
		return nil
	}
	boundary, err := e.dag.Block(e.det.LastFinalized())
	if err != nil {
		return err
	}
	next := e.era.Next(boundary)
	if err := e.enterEra(next, boundary); err != nil {
		return err
	}
	e.log.WithFields(logrus.Fields{
		"era":   next.Epoch,
		"start": next.Start.String(),
		"rank":  next.StartRank,
	}).Info("era rotated")
	return nil
}

// CurrentEra returns a snapshot of the active era.
func (e *Engine) CurrentEra() Era {
	e.mu.Lock()
	defer e.mu.Unlock()
	era := *e.era
	era.Seed = append([]byte(nil), e.era.Seed...)
	era.Bonds = e.era.Bonds.Copy()
	return era
}

// LastFinalized returns the newest finalized block.
func (e *Engine) LastFinalized() hash.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.det.LastFinalized()
}

// State returns the engine's checkpoint.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{
		Epoch:         e.era.Epoch,
		Seed:          append([]byte(nil), e.era.Seed...),
		LastFinalized: e.det.LastFinalized(),
		FinalizedRank: e.det.LastFinalizedRank(),
	}
}

// SubscribeFinalized delivers finalization events to ch until the
// subscription is closed.
func (e *Engine) SubscribeFinalized(ch chan<- FinalizedEvent) event.Subscription {
	return e.feed.Subscribe(ch)
}
