package main

import (
	"context"
	"fmt"
	"time"

	"github.com/wolfpit/wolfpit/internal/game"
	"github.com/wolfpit/wolfpit/internal/simulator"
)

// SimulateCmd runs agent-only matches without timers or transport and
// prints aggregate statistics.
type SimulateCmd struct {
	Matches int      `short:"n" default:"1000" help:"Number of matches to simulate"`
	Seed    *int64   `help:"Base seed; defaults to the current time"`
	Workers int      `short:"w" default:"0" help:"Concurrent matches (0 = GOMAXPROCS)"`
	Packs   []string `short:"p" help:"Explicit pack names (default: seeded random selection)"`
	Debug   bool     `help:"Enable debug logging"`
}

func (c *SimulateCmd) Run() error {
	level := "info"
	if c.Debug {
		level = "debug"
	}
	logger, closeLog, err := setupLogger(level, "")
	if err != nil {
		return err
	}
	defer closeLog()

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}

	match := game.MatchConfig{
		RandomPackSelection: len(c.Packs) == 0,
		PackNames:           c.Packs,
		Durations:           game.DefaultPhaseDurations(),
	}
	for _, name := range c.Packs {
		if _, ok := game.PackByName(name); !ok {
			return fmt.Errorf("unknown pack %q", name)
		}
	}

	logger.Info("starting simulation", "matches", c.Matches, "seed", seed, "workers", c.Workers)
	start := time.Now()

	sim := simulator.New(simulator.Config{
		Matches: c.Matches,
		Seed:    seed,
		Workers: c.Workers,
		Match:   match,
		Logger:  logger,
	})
	stats, err := sim.Run(context.Background())
	if err != nil {
		return err
	}

	logger.Info("simulation complete", "elapsed", time.Since(start))
	fmt.Println(stats.Summary())
	return nil
}
