// ABOUTME: Entry point for the Stillwave meditation client
// ABOUTME: Parses CLI flags and starts player or live mode
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Stillwave-Audio/stillwave-go/internal/app"
	"github.com/Stillwave-Audio/stillwave-go/internal/config"
	"github.com/Stillwave-Audio/stillwave-go/internal/ui"
	"github.com/Stillwave-Audio/stillwave-go/internal/version"
)

var (
	configPath = flag.String("config", "", "Path to YAML config file")
	theme      = flag.String("theme", "", "Meditation theme (overrides config default)")
	voice      = flag.String("voice", "", "Narration voice (overrides config default)")
	liveMode   = flag.Bool("live", false, "Run a live duplex voice session instead of playback")
	mock       = flag.Bool("mock", false, "Use the offline mock provider")
	logFile    = flag.String("log-file", "stillwave.log", "Log file path")
	noTUI      = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
)

func main() {
	flag.Parse()

	useTUI := !*noTUI && !*liveMode

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *mock {
		cfg.Provider.Mock = true
	}

	log.Printf("Starting %s %s", version.Product, version.Version)

	a := app.New(cfg)
	a.SetDefaults(*theme, *voice)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Printf("Shutdown signal received")
		cancel()
	}()

	if *liveMode {
		if err := a.RunLive(ctx); err != nil {
			log.Fatalf("Live session failed: %v", err)
		}
		log.Printf("Live session ended")
		return
	}

	var transport *ui.Transport
	if useTUI {
		transport = ui.NewTransport()
		prog, err := ui.Run(transport)
		if err != nil {
			log.Fatalf("Failed to start TUI: %v", err)
		}
		go func() {
			if _, err := prog.Run(); err != nil {
				log.Printf("TUI error: %v", err)
			}
			cancel()
		}()
		a.AttachTUI(prog, transport)
	}

	sess, err := a.GenerateSession(ctx)
	if err != nil {
		log.Fatalf("Session generation failed: %v", err)
	}

	if err := a.RunPlayer(ctx, sess); err != nil {
		log.Fatalf("Player failed: %v", err)
	}

	log.Printf("Player stopped")
}
