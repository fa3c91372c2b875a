package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dalnet/ircengine/internal/bot"
	"github.com/dalnet/ircengine/internal/config"
	"github.com/dalnet/ircengine/internal/log"
)

// Version information - set at build time via ldflags
var (
	version   = "dev"
	buildDate = "unknown"
	gitCommit = "unknown"
)

// quitGrace is how long the server gets to close the link after QUIT
const quitGrace = 5 * time.Second

func main() {
	configPath := flag.String("c", "./config.yaml", "Path to configuration file")
	showVersion := flag.Bool("v", false, "Show version information and exit")
	showVersionLong := flag.Bool("version", false, "Show version information and exit")
	flag.Parse()

	if *showVersion || *showVersionLong {
		fmt.Printf("ircbot version %s\n", version)
		fmt.Printf("Built: %s\n", buildDate)
		fmt.Printf("Commit: %s\n", gitCommit)
		os.Exit(0)
	}

	bot.Version = version
	bot.BuildDate = buildDate
	bot.GitCommit = gitCommit

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "ircbot: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	if !filepath.IsAbs(configPath) {
		wd, _ := os.Getwd()
		configPath = filepath.Join(wd, configPath)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := log.New(cfg.LogLevel)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	b, err := bot.New(cfg, logger)
	if err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info().Str("addr", cfg.Addr()).Msg("connecting")
	if err := b.Connect(sigCtx); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	runDone := make(chan struct{})
	go func() {
		select {
		case <-sigCtx.Done():
			logger.Info().Msg("received shutdown signal")
			b.Quit("Received shutdown signal")
			time.AfterFunc(quitGrace, cancel)
		case <-runDone:
		}
	}()

	logger.Info().Msg("connected, entering main loop")
	err = b.Run(runCtx)
	close(runDone)
	if sigCtx.Err() != nil {
		return nil
	}
	return err
}
