// pony - A terminal client for the Pony Express chat service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ponylabs/pony-tui/internal/api"
	"github.com/ponylabs/pony-tui/internal/cache"
	"github.com/ponylabs/pony-tui/internal/cli"
	"github.com/ponylabs/pony-tui/internal/config"
	"github.com/ponylabs/pony-tui/internal/session"
	"github.com/ponylabs/pony-tui/internal/storage"
	"github.com/ponylabs/pony-tui/internal/ui/app"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI()
	case cli.CmdLogin:
		if err := cli.HandleLogin(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdLogout:
		if err := cli.HandleLogout(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdRegister:
		if err := cli.HandleRegister(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdWhoami:
		if err := cli.HandleWhoami(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	}
}

// runTUI wires the client stack together and starts the event loop.
func runTUI() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	sess := session.NewStore(cfg.TokenPath())
	client := api.NewClient(cfg.API.BaseURL, sess)
	store := cache.New()

	// The offline snapshot is optional; a failure to open it only
	// disables the startup head start.
	var snapshot app.SnapshotReader
	if cfg.Storage.OfflineSnapshot {
		snap, err := storage.Open(cfg.SnapshotPath())
		if err == nil {
			snapshot = snap
			defer snap.Close()
		} else {
			fmt.Fprintf(os.Stderr, "Warning: offline snapshot disabled: %v\n", err)
		}
	}

	model := app.New(cfg, sess, client, store, snapshot)

	// Config edits take effect without a restart. A base URL change
	// drops every cached resource, it belongs to the old server.
	watcher, err := config.Watch(config.Path(), func(updated *config.Config) {
		if updated.API.BaseURL != client.BaseURL() {
			client.SetBaseURL(updated.API.BaseURL)
			store.Clear()
		}
	})
	if err == nil {
		defer watcher.Close()
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	model.SetProgram(p)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
