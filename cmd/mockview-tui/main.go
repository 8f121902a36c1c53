package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinytelemetry/mockview/internal/draftstore"
	"github.com/tinytelemetry/mockview/internal/model"
	"github.com/tinytelemetry/mockview/internal/outbox"
	"github.com/tinytelemetry/mockview/internal/session"
	"github.com/tinytelemetry/mockview/internal/socketrpc"
	"github.com/tinytelemetry/mockview/internal/tui"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	var configPath string
	var socketPath string
	var candidate string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/mockview/config.yml)")
	flag.StringVar(&socketPath, "socket", "", "override socket path to connect to mockview service")
	flag.StringVar(&candidate, "candidate", "", "override candidate name")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("Mockview CLI - Interview Client\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	cfg, err := loadCLIConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if socketPath != "" {
		cfg.SocketPath = socketPath
	}
	if candidate != "" {
		cfg.Candidate = candidate
	}

	if err := runTUI(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(cfg cliConfig) error {
	cleanupLogger := configureRuntimeLogger(filepath.Dir(cfg.OutboxPath))
	defer cleanupLogger()

	client, err := socketrpc.Dial(cfg.SocketPath)
	if err != nil {
		return fmt.Errorf("cannot connect to mockview service at %s: %w\nIs the mockview service running? Start it with: mockview", cfg.SocketPath, err)
	}
	defer client.Close()

	drafts, err := draftstore.Open(cfg.DraftPath)
	if err != nil {
		return fmt.Errorf("opening draft store: %w", err)
	}

	ob, err := outbox.Open(cfg.OutboxPath)
	if err != nil {
		return fmt.Errorf("opening outbox: %w", err)
	}
	defer ob.Close()

	// Deliver answers a previous run could not send.
	if n, err := ob.Flush(client); err != nil {
		log.Printf("tui: outbox flush: %v", err)
	} else if n > 0 {
		log.Printf("tui: redelivered %d pending submissions", n)
	}

	pages := tui.NewPages(tui.Deps{
		API: client,
		Submit: func(sub model.Submission) (model.SubmitResult, error) {
			return ob.Send(client, sub)
		},
		Drafts: drafts,
		Session: session.Config{
			Duration:          cfg.QuestionDuration,
			GracePeriod:       cfg.GracePeriod,
			AutosaveInterval:  cfg.AutosaveInterval,
			CompactBreakpoint: cfg.CompactBreakpoint,
		},
		Candidate: cfg.Candidate,
	})

	p := tea.NewProgram(tui.NewApp(pages...), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// configureRuntimeLogger keeps log output off the alt-screen.
func configureRuntimeLogger(dir string) func() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := os.MkdirAll(dir, 0755); err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}
	f, err := os.OpenFile(filepath.Join(dir, "mockview-tui.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}
	log.SetOutput(f)
	return func() {
		_ = f.Close()
	}
}
