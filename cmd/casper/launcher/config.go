// This file maps CLI context to the launcher config: defaults first, then
// flag overrides.

package launcher

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/evalphobia/logrus_sentry"
	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-casper-core/casper"
)

// Config aggregates everything the launcher needs to assemble a node core.
type Config struct {
	Rules          casper.Rules
	FakeValidators idx.ValidatorID
	Logging        LoggingConfig
}

type LoggingConfig struct {
	Verbosity int
	Format    string
	Color     bool
	SentryDSN string
}

// MakeConfig merges the selected network preset with CLI flag overrides.
func MakeConfig(ctx *cli.Context) (Config, error) {
	cfg := Config{
		Rules:          casper.FakeNetRules(),
		FakeValidators: 3,
		Logging: LoggingConfig{
			Verbosity: 4,
			Format:    "text",
		},
	}

	switch name := ctx.GlobalString("network"); name {
	case "main":
		cfg.Rules = casper.MainNetRules()
	case "test":
		cfg.Rules = casper.TestNetRules()
	case "fake", "":
		cfg.Rules = casper.FakeNetRules()
	default:
		return cfg, fmt.Errorf("unknown network preset %q", name)
	}

	if ctx.GlobalIsSet("fakenet.validators") {
		n := ctx.GlobalInt("fakenet.validators")
		if n < 1 {
			return cfg, fmt.Errorf("fakenet needs at least 1 validator, got %d", n)
		}
		cfg.FakeValidators = idx.ValidatorID(n)
	}
	if ctx.GlobalIsSet("rftt") {
		num, den, err := parseFraction(ctx.GlobalString("rftt"))
		if err != nil {
			return cfg, err
		}
		cfg.Rules.Eras.RFTTNum = num
		cfg.Rules.Eras.RFTTDen = den
	}
	if ctx.GlobalIsSet("era.length") {
		cfg.Rules.Eras.EraLength = idx.Block(ctx.GlobalUint64("era.length"))
	}

	if ctx.GlobalIsSet("log.format") {
		cfg.Logging.Format = ctx.GlobalString("log.format")
	}
	if ctx.GlobalIsSet("log.verbosity") {
		cfg.Logging.Verbosity = ctx.GlobalInt("log.verbosity")
	}
	if ctx.GlobalIsSet("log.color") {
		cfg.Logging.Color = ctx.GlobalBool("log.color")
	}
	if ctx.GlobalIsSet("sentry.dsn") {
		cfg.Logging.SentryDSN = ctx.GlobalString("sentry.dsn")
	}
	return cfg, nil
}

// parseFraction reads "n/d" into an exact fraction in [0, 1).
func parseFraction(s string) (num, den uint64, err error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed fraction %q, expected n/d", s)
	}
	num, err = strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed fraction %q: %v", s, err)
	}
	den, err = strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed fraction %q: %v", s, err)
	}
	if den == 0 || num >= den {
		return 0, 0, fmt.Errorf("fraction %q is not in [0, 1)", s)
	}
	return num, den, nil
}

// makeLogger builds the logrus logger from the config, attaching the Sentry
// hook when a DSN is configured.
func makeLogger(cfg LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level := cfg.Verbosity
	if level < int(logrus.PanicLevel) {
		level = int(logrus.PanicLevel)
	}
	if level > int(logrus.TraceLevel) {
		level = int(logrus.TraceLevel)
	}
	logger.SetLevel(logrus.Level(level))

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{ForceColors: cfg.Color})
	}

	if cfg.SentryDSN != "" {
		hook, err := logrus_sentry.NewSentryHook(cfg.SentryDSN, []logrus.Level{
			logrus.PanicLevel,
			logrus.FatalLevel,
			logrus.ErrorLevel,
		})
		if err != nil {
			logger.WithError(err).Warn("can't attach sentry hook")
		} else {
			logger.AddHook(hook)
		}
	}
	return logger
}
