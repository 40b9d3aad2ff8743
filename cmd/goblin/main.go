package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/codyseavey/goblin-bookie/internal/config"
	"github.com/codyseavey/goblin-bookie/internal/logging"
	"github.com/codyseavey/goblin-bookie/internal/search"
	"github.com/codyseavey/goblin-bookie/internal/services"
)

func main() {
	configPath := flag.String("config", os.Getenv("GOBLIN_CONFIG"), "path to a TOML config file")
	flag.Parse()

	cfg, err := config.LoadFromFile(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load config:", err)
		os.Exit(1)
	}

	// Keep the terminal for results; only problems go to stderr
	logCfg := cfg.Logging
	if logCfg.Level == "info" || logCfg.Level == "" {
		logCfg.Level = "warn"
	}
	logging.Setup(logCfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clientCfg := services.ClientConfig{
		BaseURL:           cfg.API.URL,
		Timeout:           cfg.API.Timeout.Duration,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Burst:             cfg.API.Burst,
	}
	goblinService := services.NewGoblinService(clientCfg)
	sampleCfg := clientCfg
	sampleCfg.BaseURL = cfg.API.SampleURL

	cards := services.NewCardService(goblinService, nil, services.CacheConfig{
		Size: cfg.Cache.Size,
		TTL:  cfg.Cache.TTL.Duration,
	})
	session := search.NewSession(ctx, cards)
	defer session.Close()

	app := NewApp(session, cards, services.NewSampleService(sampleCfg))

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		printlnFn("Goblin Bookie price lookup. Type 'help' for commands.")
	}
	runREPL(ctx, app, interactive, bufio.NewScanner(os.Stdin))
}
