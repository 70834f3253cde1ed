package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/matheus3301/huddle/internal/config"
	"github.com/matheus3301/huddle/internal/daemon"
	"github.com/matheus3301/huddle/internal/workspace"
	"go.uber.org/fx"
)

func main() {
	workspaceFlag := flag.String("workspace", "", "workspace name (overrides config default)")
	httpFlag := flag.String("http", "", "HTTP gateway address (overrides config http_addr; \"off\" disables)")
	logLevelFlag := flag.String("log-level", "", "log level: debug, info, warn, error")
	flag.Parse()

	name := workspace.Resolve(*workspaceFlag)
	if err := workspace.ValidateName(name); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(workspace.ConfigPath())
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg = &config.Config{}
	case err != nil:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	httpAddr := workspace.HTTPAddr(cfg)
	switch *httpFlag {
	case "":
	case "off":
		httpAddr = ""
	default:
		httpAddr = *httpFlag
	}
	logLevel := cfg.LogLevel
	if *logLevelFlag != "" {
		logLevel = *logLevelFlag
	}

	app := fx.New(
		daemon.Module(daemon.Params{
			Workspace: name,
			HTTPAddr:  httpAddr,
			LogLevel:  logLevel,
		}),
	)

	app.Run()
}
