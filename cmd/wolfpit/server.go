package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/quartz"

	"github.com/wolfpit/wolfpit/internal/server"
)

// ServerCmd runs the WebSocket match server.
type ServerCmd struct {
	Config   string `short:"c" default:"wolfpit.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	Seed     *int64 `help:"Deterministic seed for match randomness (overrides config)"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.Seed != nil {
		cfg.Server.Seed = *c.Seed
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// --addr carries its own port and replaces the configured pair.
	addr := cfg.Address()
	if c.Addr != "" {
		addr = c.Addr
	}

	logger, closeLog, err := setupLogger(cfg.Server.LogLevel, cfg.Server.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	seed := cfg.Server.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	logger.Info("starting wolfpit server",
		"addr", addr,
		"seed", seed,
		"randomPacks", cfg.Match.RandomPacks,
		"packs", cfg.Match.Packs,
		"archiveDir", cfg.Match.ArchiveDir)

	wsServer := server.NewServer(addr, logger)
	service := server.NewMatchService(wsServer, logger, server.ServiceConfig{
		Seed:  seed,
		Clock: quartz.NewReal(),
		Match: cfg.MatchConfig(),
		Bots:  *cfg.Bots,
	})
	wsServer.SetService(service)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		logger.Info("shutting down", "signal", sig.String())
		if err := wsServer.Stop(); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
		os.Exit(0)
	}()

	return wsServer.Start()
}
