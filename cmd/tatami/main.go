package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/tatamiwm/tatami/internal/border"
	"github.com/tatamiwm/tatami/internal/config"
	"github.com/tatamiwm/tatami/internal/daemon"
	"github.com/tatamiwm/tatami/internal/hotkeys"
	"github.com/tatamiwm/tatami/internal/ipc"
	"github.com/tatamiwm/tatami/internal/rules"
	"github.com/tatamiwm/tatami/internal/settings"
	"github.com/tatamiwm/tatami/internal/wm"
	"github.com/tatamiwm/tatami/internal/x11"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "state":
		os.Exit(runState(os.Args[2:]))
	case "border":
		os.Exit(runBorder(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tatami <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the tatami daemon (foreground)")
	fmt.Fprintln(w, "  reload              Reload the configuration document")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  state               Print the live state as a configuration document")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  border show         Enable the focus border")
	fmt.Fprintln(w, "  border hide         Disable the focus border")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate a configuration document")
	fmt.Fprintln(w, "  config print        Parse and reprint a configuration document")
	fmt.Fprintln(w, "  config save         Save the daemon's live state to a file")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'tatami <command> --help' for command-specific options.")
}

func defaultConfigPath() string {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, "tatami", "tatami.json")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "tatami.json"
	}
	return filepath.Join(home, ".config", "tatami", "tatami.json")
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tatami daemon [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	configPath := fs.String("config", defaultConfigPath(), "Configuration document path")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	startDaemon(*configPath)
	return 0
}

func startDaemon(configPath string) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Connect to the display server
	conn, err := x11.NewConnection()
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer conn.Close()

	store := settings.NewStore()
	registry := rules.NewRegistry()
	mgr := wm.NewManager(conn, store, registry, logger)

	// The border gets its own connection so its event loop never contends
	// with the manager's.
	borderConn, err := x11.NewConnection()
	if err != nil {
		log.Fatalf("Failed to open border display connection: %v", err)
	}
	defer borderConn.Close()

	b, err := border.Create("tatami-border", borderConn, store, logger)
	if err != nil {
		log.Fatalf("Failed to create border: %v", err)
	}
	mgr.SetBorder(b)

	// The border starts enabled; the configuration decides whether it shows.
	b.Disable()

	var reloadMu sync.Mutex
	activePath := configPath
	reload := func(path string) error {
		reloadMu.Lock()
		defer reloadMu.Unlock()
		if path == "" {
			path = activePath
		}
		if _, err := config.Reload(path, mgr); err != nil {
			return err
		}
		activePath = path
		return nil
	}

	handlers := ipc.Handlers{
		ReloadConfiguration: reload,
		State: func() ([]byte, error) {
			return config.FromManager(mgr).Marshal()
		},
		Status: func() ipc.StatusData {
			reloadMu.Lock()
			path := activePath
			reloadMu.Unlock()
			return ipc.StatusData{
				BorderEnabled: store.BorderEnabled(),
				MonitorCount:  len(mgr.Monitors()),
				ConfigPath:    path,
			}
		},
		ShowBorder: mgr.ShowBorder,
		HideBorder: mgr.HideBorder,
	}

	cfg, server, watcher, err := config.Preload(configPath, mgr, handlers, logger)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	defer server.Stop()
	defer watcher.Stop()

	if err := config.Postload(cfg, mgr); err != nil {
		log.Fatalf("Failed to apply configuration: %v", err)
	}
	log.Printf("Configuration loaded from %s", configPath)

	// Hotkeys are registered once at startup from the preloaded document.
	hotkeyHandler := hotkeys.NewHandler(conn)
	if cfg.BorderToggleHotkey != nil {
		if err := hotkeyHandler.RegisterFunc(*cfg.BorderToggleHotkey, func() {
			if store.BorderEnabled() {
				mgr.HideBorder()
			} else {
				mgr.ShowBorder()
			}
		}); err != nil {
			log.Printf("Warning: %v", err)
		}
	}
	if cfg.ReloadHotkey != nil {
		if err := hotkeyHandler.RegisterFunc(*cfg.ReloadHotkey, func() {
			if err := reload(""); err != nil {
				log.Printf("Configuration reload failed: %v", err)
			}
		}); err != nil {
			log.Printf("Warning: %v", err)
		}
	}

	// Feed focus changes into the manager; a full channel drops the event,
	// the next focus change catches up.
	events := mgr.Events()
	if err := conn.WatchActiveWindow(func(win x11.WindowID) {
		select {
		case events <- wm.Event{Kind: wm.EventFocusChange, Window: win}:
		default:
		}
	}); err != nil {
		log.Fatalf("Failed to watch focus changes: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go mgr.Run(ctx)

	// Catch border drift from windows that move without a focus change.
	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: 10 * time.Second,
		Logger:   logger,
	}, mgr, conn.ActiveWindow)
	reconciler.ReconcileNow()
	go reconciler.Run(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for sig := range sigCh {
			switch sig {
			case syscall.SIGHUP:
				log.Println("Received SIGHUP, reloading configuration...")
				if err := reload(""); err != nil {
					log.Printf("Configuration reload failed: %v", err)
				}
			case os.Interrupt, syscall.SIGTERM:
				log.Println("Shutting down tatami daemon...")
				cancel()
				watcher.Stop()
				server.Stop()
				os.Exit(0)
			}
		}
	}()

	log.Println("Entering event loop...")
	conn.EventLoop()
}

func runReload(args []string) int {
	fs := flag.NewFlagSet("reload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tatami reload [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Ask the daemon to reload a configuration document.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "", "Configuration document path (default: the daemon's current document)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	if err := client.ReloadConfiguration(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tatami status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("border_enabled: %v\n", status.BorderEnabled)
	fmt.Printf("monitor_count:  %d\n", status.MonitorCount)
	fmt.Printf("config_path:    %s\n", status.ConfigPath)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

func runState(args []string) int {
	fs := flag.NewFlagSet("state", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tatami state")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Print the daemon's live state as a configuration document.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	state, err := client.State()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	os.Stdout.Write(state)
	fmt.Println()
	return 0
}

func runBorder(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  tatami border show")
		fmt.Fprintln(os.Stderr, "  tatami border hide")
		return 2
	}

	client := ipc.NewClient()
	switch args[0] {
	case "show":
		if err := client.ShowBorder(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	case "hide":
		if err := client.HideBorder(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown border command: %s\n", args[0])
		return 2
	}
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  tatami config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  tatami config print [--path PATH]")
		fmt.Fprintln(os.Stderr, "  tatami config save [--path PATH]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", defaultConfigPath(), "Configuration document path")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		if _, err := config.Load(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", defaultConfigPath(), "Configuration document path")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg, err := config.Load(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		os.Stdout.Write(data)
		return 0

	case "save":
		fs := flag.NewFlagSet("save", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", defaultConfigPath(), "Destination path")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		client := ipc.NewClient()
		state, err := client.State()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if err := os.WriteFile(*path, append(state, '\n'), 0644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("state saved to %s\n", *path)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}
