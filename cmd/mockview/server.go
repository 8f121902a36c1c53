package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/tinytelemetry/mockview/internal/backup"
	"github.com/tinytelemetry/mockview/internal/duckdb"
	"github.com/tinytelemetry/mockview/internal/httpserver"
	"github.com/tinytelemetry/mockview/internal/practice"
	"github.com/tinytelemetry/mockview/internal/questionbank"
	"github.com/tinytelemetry/mockview/internal/socketrpc"
)

// runServer starts the practice service with its socket and HTTP surfaces.
func runServer(cfg appConfig) error {
	cleanupLogger := configureRuntimeLogger()
	defer cleanupLogger()

	store, err := duckdb.NewStore(cfg.DBPath, cfg.QueryTimeout)
	if err != nil {
		return fmt.Errorf("failed to initialize DuckDB: %w", err)
	}
	defer store.Close()

	bank, err := questionbank.LoadFile(cfg.QuestionBank)
	if err != nil {
		return fmt.Errorf("failed to load question bank: %w", err)
	}
	if cfg.SeedQuestions {
		n, err := bank.Seed(store)
		if err != nil {
			return fmt.Errorf("failed to seed questions: %w", err)
		}
		if n > 0 {
			log.Printf("server: seeded %d questions", n)
		}
	}

	svc := practice.NewService(store, bank, practice.Config{
		QuestionsPerInterview: cfg.QuestionsPerInterview,
		FuzzyDistance:         cfg.FuzzyDistance,
	})

	backupManager, err := backup.NewManager(store, backup.Config{
		Enabled:  cfg.BackupEnabled,
		Interval: cfg.BackupInterval,
		LocalDir: cfg.BackupLocalDir,
		KeepLast: cfg.BackupKeepLast,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize backups: %w", err)
	}

	if cfg.APIEnabled {
		apiServer := httpserver.NewServer(cfg.APIAddr, svc)
		if err := apiServer.Start(); err != nil {
			return fmt.Errorf("failed to start API server: %w", err)
		}
		defer apiServer.Stop()
	}

	sockServer := socketrpc.NewServer(cfg.SocketPath, svc)
	if err := sockServer.Start(); err != nil {
		return fmt.Errorf("failed to start socket server: %w", err)
	}
	defer sockServer.Stop()

	// Set up context and signal handling before errgroup
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down gracefully... (press Ctrl+C again to force)")
		cancel()

		deadline := time.NewTimer(10 * time.Second)
		defer deadline.Stop()

		select {
		case <-sigCh:
			fmt.Println("\nForce shutdown.")
		case <-deadline.C:
			fmt.Println("Shutdown timed out, forcing exit.")
		}
		cleanupSocket(cfg.SocketPath)
		os.Exit(1)
	}()

	printStartupBanner(cfg, bank)

	g, gctx := errgroup.WithContext(ctx)

	if backupManager != nil {
		g.Go(func() error {
			return backupManager.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("server: errgroup exited with error: %v", err)
	}

	signal.Stop(sigCh)
	return nil
}

func cleanupSocket(path string) {
	if path != "" {
		os.Remove(path)
	}
}

func configureRuntimeLogger() func() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	home, err := os.UserHomeDir()
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	logDir := filepath.Join(home, ".local", "state", "mockview")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	f, err := os.OpenFile(filepath.Join(logDir, "mockview.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	log.SetOutput(f)
	return func() {
		_ = f.Close()
	}
}

func printStartupBanner(cfg appConfig, bank *questionbank.Bank) {
	fmt.Println(renderStartupBanner(cfg, bank))
}

// bannerRow is one status line of the startup banner. An inactive row is
// drawn with a dim marker and its value greyed out.
type bannerRow struct {
	label  string
	value  string
	active bool
	accent bool
}

func renderStartupBanner(cfg appConfig, bank *questionbank.Bank) string {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	bold := lipgloss.NewStyle().Bold(true)

	api := bannerRow{label: "HTTP API", value: "disabled"}
	if cfg.APIEnabled {
		api = bannerRow{label: "HTTP API", value: cfg.APIAddr, active: true, accent: true}
	}
	snapshots := bannerRow{label: "Snapshots", value: "disabled"}
	if cfg.BackupEnabled {
		snapshots = bannerRow{label: "Snapshots", value: shortenPath(cfg.BackupLocalDir), active: true}
	}
	bankSource := "built-in"
	if cfg.QuestionBank != "" {
		bankSource = shortenPath(cfg.QuestionBank)
	}
	configRow := bannerRow{label: "Config File", value: "default (no file)"}
	if cfg.ConfigPath != "" {
		configRow = bannerRow{label: "Config File", value: shortenPath(cfg.ConfigPath), active: true}
	}

	sections := []struct {
		title string
		rows  []bannerRow
	}{
		{"Gateway", []bannerRow{
			api,
			{label: "Unix Socket", value: shortenPath(cfg.SocketPath), active: true, accent: true},
		}},
		{"Storage", []bannerRow{
			{label: "Storage", value: shortenPath(cfg.DBPath), active: true},
			snapshots,
		}},
		{"Interviews", []bannerRow{
			{label: "Question Bank", value: fmt.Sprintf("%s (%d questions, %d roles)", bankSource, len(bank.Questions), len(bank.Roles)), active: true},
			{label: "Per Interview", value: fmt.Sprintf("%d questions", cfg.QuestionsPerInterview), active: true},
		}},
		{"Config", []bannerRow{configRow}},
	}

	logo := cyan.Bold(true).Render(`
    ╔╦╗╔═╗╔═╗╦╔═╦  ╦╦╔═╗╦ ╦
    ║║║║ ║║  ╠╩╗╚╗╔╝║║╣ ║║║
    ╩ ╩╚═╝╚═╝╩ ╩ ╚╝ ╩╚═╝╚╩╝`)
	separator := dim.Render("    " + strings.Repeat("─", 33))

	lines := []string{"", logo, "    " + dim.Render("v"+version), "", separator}
	for _, sec := range sections {
		lines = append(lines, "", bold.Render("    "+sec.title), "")
		for _, r := range sec.rows {
			marker, value := dim.Render("●"), dim.Render(r.value)
			if r.active {
				marker = green.Render("●")
				if r.accent {
					value = cyan.Render(r.value)
				}
			}
			lines = append(lines, fmt.Sprintf("    %s  %-14s %s", marker, r.label, value))
		}
	}
	lines = append(lines, "", separator, "",
		"    "+dim.Render("Press ")+yellow.Render("Ctrl+C")+dim.Render(" to stop"), "")

	return strings.Join(lines, "\n")
}

func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "/" {
		return path
	}
	if strings.HasPrefix(path, home+string(os.PathSeparator)) {
		return "~" + path[len(home):]
	}
	return path
}
