// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/ponylabs/pony-tui/internal/api"
	"github.com/ponylabs/pony-tui/internal/config"
	"github.com/ponylabs/pony-tui/internal/session"
)

const authTimeout = 15 * time.Second

// =============================================================================
// AUTH COMMANDS
// =============================================================================

// HandleLogin prompts for credentials, exchanges them for a token, and
// stores the token for later sessions. The password is read with echo
// disabled when stdin is a terminal.
func HandleLogin(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	username, password, err := promptCredentials()
	if err != nil {
		return err
	}

	sess := session.NewStore(cfg.TokenPath())
	client := api.NewClient(cfg.API.BaseURL, sess)

	ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
	defer cancel()

	payload, err := client.Login(ctx, username, password)
	if err != nil {
		if api.IsUnauthorized(err) {
			return errors.New("invalid credentials")
		}
		return err
	}
	if err := sess.Login(*payload); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	fmt.Printf("signed in as %s\n", username)
	return nil
}

// HandleRegister creates a new account, then signs in with it.
func HandleRegister(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("email: ")
	email, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email is required")
	}

	username, password, err := promptCredentials()
	if err != nil {
		return err
	}

	sess := session.NewStore(cfg.TokenPath())
	client := api.NewClient(cfg.API.BaseURL, sess)

	ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
	defer cancel()

	user, err := client.Register(ctx, username, email, password)
	if err != nil {
		return err
	}
	fmt.Printf("account %s created\n", user.Username)

	payload, err := client.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("account created but sign-in failed: %w", err)
	}
	if err := sess.Login(*payload); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	fmt.Printf("signed in as %s\n", username)
	return nil
}

// HandleLogout discards the stored token.
func HandleLogout(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	sess := session.NewStore(cfg.TokenPath())
	if !sess.IsAuthenticated() {
		fmt.Println("not signed in")
		return nil
	}
	if err := sess.Logout(); err != nil {
		return err
	}
	fmt.Println("signed out")
	return nil
}

// HandleWhoami prints the signed-in account.
func HandleWhoami(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	sess := session.NewStore(cfg.TokenPath())
	if !sess.IsAuthenticated() {
		return errors.New("not signed in")
	}

	client := api.NewClient(cfg.API.BaseURL, sess)
	ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
	defer cancel()

	user, err := client.CurrentUser(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			return errors.New("stored token rejected, run 'pony login'")
		}
		return err
	}

	fmt.Printf("%s <%s> since %s\n", user.Username, user.Email, user.JoinDate())
	return nil
}

// promptCredentials reads the username and password from stdin.
func promptCredentials() (string, string, error) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("username: ")
	username, err := reader.ReadString('\n')
	if err != nil {
		return "", "", err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return "", "", errors.New("username is required")
	}

	fmt.Print("password: ")
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", "", err
		}
		return username, string(raw), nil
	}

	// Piped input, read the next line instead.
	password, err := reader.ReadString('\n')
	if err != nil {
		return "", "", err
	}
	return username, strings.TrimRight(password, "\r\n"), nil
}
