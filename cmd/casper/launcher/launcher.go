// Package launcher wires flags, logging and the consensus core into the
// casper-core CLI. Consensus logic lives in the libraries; the launcher
// only parses flags, builds configs and drives the chosen command.
package launcher

import (
	"fmt"
	"sort"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-casper-core/casper"
	"github.com/rony4d/go-casper-core/era"
	"github.com/rony4d/go-casper-core/flags"
	"github.com/rony4d/go-casper-core/integration"
	"github.com/rony4d/go-casper-core/inter"
	"github.com/rony4d/go-casper-core/sequencer"
)

var app = flags.NewApp()

func init() {
	app.Flags = append(flags.CommonFlags(), flags.NetworkFlags()...)
	app.Commands = []cli.Command{
		{
			Name:   "check",
			Usage:  "Validate the network's governance table and genesis configuration",
			Action: checkConfig,
		},
		{
			Name:  "elect",
			Usage: "Print the fakenet leader schedule for a range of ticks",
			Flags: []cli.Flag{
				cli.Uint64Flag{
					Name:  "ticks",
					Usage: "Number of ticks to print",
					Value: 10,
				},
			},
			Action: electLeaders,
		},
		{
			Name:  "demo",
			Usage: "Run a finality demo on an in-memory fakenet chain",
			Flags: []cli.Flag{
				cli.Uint64Flag{
					Name:  "blocks",
					Usage: "Number of blocks to produce",
					Value: 20,
				},
			},
			Action: runDemo,
		},
	}
	app.Action = func(ctx *cli.Context) error {
		return cli.ShowAppHelp(ctx)
	}
}

// Launch parses flags and runs the selected command.
func Launch(args []string) error {
	return app.Run(args)
}

func checkConfig(ctx *cli.Context) error {
	cfg, err := MakeConfig(ctx)
	if err != nil {
		return err
	}
	log := makeLogger(cfg.Logging)

	versions, err := cfg.Rules.VersionRegistry()
	if err != nil {
		return fmt.Errorf("invalid version table of %s: %w", cfg.Rules.Name, err)
	}
	if cfg.Rules.NetworkID == casper.FakeNetworkID {
		g := integration.FakeGenesis(cfg.FakeValidators)
		g.Rules = cfg.Rules
		if err := g.Validate(); err != nil {
			return fmt.Errorf("invalid fakenet genesis: %w", err)
		}
		log.WithField("genesis", g.Block().ID.String()).Info("genesis is valid")
	}
	log.WithFields(logrus.Fields{
		"network":    cfg.Rules.Name,
		"id":         cfg.Rules.NetworkID,
		"thresholds": len(versions.Thresholds()),
		"version":    versions.VersionAt(0).String(),
	}).Info("configuration is valid")
	return nil
}

func electLeaders(ctx *cli.Context) error {
	cfg, err := MakeConfig(ctx)
	if err != nil {
		return err
	}
	g := integration.FakeGenesis(cfg.FakeValidators)
	g.Rules = cfg.Rules
	if err := g.Validate(); err != nil {
		return err
	}

	seq, err := sequencer.New(g.EraSeed, g.Bonds())
	if err != nil {
		return err
	}
	for tick := uint64(1); tick <= ctx.Uint64("ticks"); tick++ {
		fmt.Fprintf(app.Writer, "tick %4d -> validator %d\n", tick, seq.Elect(tick))
	}
	return nil
}

func runDemo(ctx *cli.Context) error {
	cfg, err := MakeConfig(ctx)
	if err != nil {
		return err
	}
	log := makeLogger(cfg.Logging)

	g := integration.FakeGenesis(cfg.FakeValidators)
	g.Rules = cfg.Rules
	engine, _, err := integration.NewFromGenesis(g, log)
	if err != nil {
		return err
	}

	events := make(chan era.FinalizedEvent, 1024)
	sub := engine.SubscribeFinalized(events)
	defer sub.Unsubscribe()

	parent := g.Block()
	latest := map[idx.ValidatorID]*inter.Block{}
	for i := uint64(0); i < ctx.Uint64("blocks"); i++ {
		snap := engine.CurrentEra()
		seq, err := sequencer.New(snap.Seed, snap.Bonds)
		if err != nil {
			return err
		}
		rank := parent.Rank + 1
		leader := seq.Elect(uint64(rank - snap.StartRank))

		ids := make([]idx.ValidatorID, 0, len(latest))
		for v := range latest {
			if v != leader {
				ids = append(ids, v)
			}
		}
		sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
		justs := make([]inter.Justification, 0, len(ids))
		for _, v := range ids {
			justs = append(justs, inter.Justification{Validator: v, Block: latest[v].ID})
		}

		b := &inter.Block{
			Parent:         parent.ID,
			Creator:        leader,
			Rank:           rank,
			Time:           inter.Timestamp(i + 1),
			Justifications: justs,
		}
		if rank >= snap.StartRank+snap.Length {
			b.MagicBits = integration.FakeMagicBits(parent.ID, cfg.Rules.Eras.MagicBitsLen)
		}
		b.ID = b.HashID()

		if _, err := engine.ProcessBlock(b); err != nil {
			return err
		}
		parent = b
		latest[leader] = b
	}

	finalized := 0
	for done := false; !done; {
		select {
		case <-events:
			finalized++
		default:
			done = true
		}
	}
	state := engine.State()
	log.WithFields(logrus.Fields{
		"blocks":    ctx.Uint64("blocks"),
		"finalized": finalized,
		"rank":      state.FinalizedRank,
		"era":       state.Epoch,
		"state":     state.Hash().String(),
	}).Info("demo finished")
	return nil
}
