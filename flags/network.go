package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// NetworkFlags selects the chain configuration.

func NetworkFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "network",
			Usage: "Network preset to use (main|test|fake)",
			Value: "fake",
		},
		cli.IntFlag{
			Name:  "fakenet.validators",
			Usage: "Number of validators in the fake network",
			Value: 3,
		},
		cli.StringFlag{
			Name:  "rftt",
			Usage: "Fault tolerance threshold override, as a fraction n/d",
		},
		cli.Uint64Flag{
			Name:  "era.length",
			Usage: "Era length override, in block ranks",
		},
	}
}
