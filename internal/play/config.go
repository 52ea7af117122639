package play

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/phrazzld/pairs/internal/domain"
	"github.com/phrazzld/pairs/internal/game"
)

// Config holds the terminal game settings.
type Config struct {
	PairCount     int
	MismatchDelay time.Duration
	Symbols       []string
	// Seed fixes the shuffle when non-zero.
	Seed     uint64
	LogLevel string

	// Random overrides Seed. Not settable from flags.
	Random domain.RandomSource
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{
		PairCount:     game.DefaultPairCount,
		MismatchDelay: game.DefaultMismatchDelay,
		LogLevel:      "warn",
	}
	var symbols string

	fs.IntVar(&cfg.PairCount, "pairs", cfg.PairCount, "number of pairs to deal")
	fs.DurationVar(&cfg.MismatchDelay, "delay", cfg.MismatchDelay, "how long a mismatched pair stays face up")
	fs.StringVar(&symbols, "symbols", "", "comma separated symbols to deal instead of A..Z")
	fs.Uint64Var(&cfg.Seed, "seed", 0, "shuffle seed; 0 picks a random one")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error; logs go to stderr")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if symbols != "" {
		for _, s := range strings.Split(symbols, ",") {
			cfg.Symbols = append(cfg.Symbols, strings.TrimSpace(s))
		}
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.PairCount <= 0 {
		return errors.New("pairs must be greater than zero")
	}
	if c.MismatchDelay < 0 {
		return fmt.Errorf("delay must not be negative, got %s", c.MismatchDelay)
	}
	return nil
}

func (c Config) engineConfig() game.EngineConfig {
	rng := c.Random
	if rng == nil && c.Seed != 0 {
		rng = domain.NewSeededRandomSource(c.Seed, c.Seed)
	}
	return game.EngineConfig{
		PairCount:     c.PairCount,
		Symbols:       c.Symbols,
		MismatchDelay: c.MismatchDelay,
		Random:        rng,
	}
}
