package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matheus3301/huddle/internal/logging"
	intsync "github.com/matheus3301/huddle/internal/sync"
	"github.com/matheus3301/huddle/internal/tui"
	"github.com/matheus3301/huddle/internal/tui/client"
	"github.com/matheus3301/huddle/internal/workspace"
	"go.uber.org/zap"
)

func main() {
	workspaceFlag := flag.String("workspace", "", "workspace name (overrides config default)")
	userFlag := flag.String("user", "", "acting user id (overrides config user_id)")
	flag.Parse()

	name := workspace.Resolve(*workspaceFlag)
	if err := workspace.ValidateName(name); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	user := workspace.ResolveUser(*userFlag)
	if user == "" {
		fmt.Fprintf(os.Stderr, "error: no acting user: pass --user or set user_id in %s\n", workspace.ConfigPath())
		os.Exit(1)
	}

	socketPath := workspace.SocketPath(name)
	if err := client.EnsureDaemon(name, socketPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg := workspace.LoadConfig()

	// The terminal belongs to tview, so the TUI logs to its own file only.
	logger, err := logging.NewFile(filepath.Join(workspace.LogDir(name), "huddletui.log"), cfg.LogLevel)
	if err != nil {
		logger = zap.NewNop()
	}
	defer func() { _ = logger.Sync() }()

	c, err := client.New(socketPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to daemon: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = c.Close() }()

	var opts []intsync.Option
	if d := workspace.IdentityTimeout(cfg); d > 0 {
		opts = append(opts, intsync.WithIdentityTimeout(d))
	}

	logger.Info("tui starting", zap.String("workspace", name), zap.String("user", user))
	app := tui.NewApp(c, name, user, logger, opts...)
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
