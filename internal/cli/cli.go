// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli handles argument parsing and the non-TUI commands.
package cli

import (
	"fmt"
	"os"
)

// Version information, synced from main at startup.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// COMMAND ROUTING
// =============================================================================

// Command identifies which top-level command was requested.
type Command int

const (
	CmdTUI Command = iota // Default: run the chat TUI
	CmdLogin
	CmdLogout
	CmdRegister
	CmdWhoami
	CmdVersion
	CmdHelp
)

// Parse inspects os.Args and returns the command plus its remaining
// arguments. No arguments means the TUI.
func Parse() (Command, []string) {
	args := os.Args[1:]
	if len(args) == 0 {
		return CmdTUI, nil
	}

	switch args[0] {
	case "login":
		return CmdLogin, args[1:]
	case "logout":
		return CmdLogout, args[1:]
	case "register":
		return CmdRegister, args[1:]
	case "whoami":
		return CmdWhoami, args[1:]
	case "version", "--version", "-v":
		return CmdVersion, args[1:]
	case "help", "--help", "-h":
		return CmdHelp, args[1:]
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		return CmdHelp, nil
	}
}

// PrintVersion writes the build information to stdout.
func PrintVersion() {
	fmt.Printf("pony %s (%s, built %s)\n", Version, GitCommit, BuildDate)
}

// PrintUsage writes the command summary to stdout.
func PrintUsage() {
	fmt.Println(`pony - terminal client for Pony Express chat

Usage:
  pony            start the chat TUI
  pony login      sign in and store the session token
  pony logout     discard the stored session token
  pony register   create a new account
  pony whoami     print the signed-in account
  pony version    print build information

Environment:
  PONY_API_URL    override the API base URL`)
}
