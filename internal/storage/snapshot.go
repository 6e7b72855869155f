// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists an offline snapshot of server data so the
// client can render the last-known chat list and messages while the API
// is unreachable. The snapshot is advisory: it is overwritten after
// every successful fetch and never consulted for writes.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ponylabs/pony-tui/internal/model"
)

// =============================================================================
// SNAPSHOT STORE
// =============================================================================

// SnapshotStore holds the offline copy in a local SQLite database.
type SnapshotStore struct {
	db *sql.DB
}

// Open creates or opens the snapshot database at path.
func Open(path string) (*SnapshotStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &SnapshotStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

func (s *SnapshotStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chats (
		id       INTEGER PRIMARY KEY,
		name     TEXT NOT NULL,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		chat_id    INTEGER NOT NULL,
		seq        INTEGER NOT NULL,
		id         INTEGER NOT NULL,
		text       TEXT NOT NULL,
		username   TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (chat_id, seq)
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize snapshot schema: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE OPERATIONS
// =============================================================================

// SaveChats replaces the stored chat list. Implements chats.Snapshotter.
func (s *SnapshotStore) SaveChats(chats []model.Chat) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM chats"); err != nil {
		return err
	}
	for i, chat := range chats {
		if chat.Placeholder {
			continue
		}
		if _, err := tx.Exec(
			"INSERT INTO chats (id, name, position) VALUES (?, ?, ?)",
			chat.ID, chat.Name, i,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SaveMessages replaces the stored messages for one chat, preserving
// the server's ordering. Implements chats.Snapshotter.
func (s *SnapshotStore) SaveMessages(chatID int, messages []model.Message) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages WHERE chat_id = ?", chatID); err != nil {
		return err
	}
	for i, msg := range messages {
		if msg.Pending {
			continue
		}
		if _, err := tx.Exec(
			"INSERT INTO messages (chat_id, seq, id, text, username, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			chatID, i, msg.ID, msg.Text, msg.User.Username, msg.CreatedAt.Format(time.RFC3339Nano),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// =============================================================================
// LOAD OPERATIONS
// =============================================================================

// LoadChats returns the stored chat list in its original order. An
// empty snapshot yields an empty, non-nil slice.
func (s *SnapshotStore) LoadChats() ([]model.Chat, error) {
	rows, err := s.db.Query("SELECT id, name FROM chats ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chats := []model.Chat{}
	for rows.Next() {
		var chat model.Chat
		if err := rows.Scan(&chat.ID, &chat.Name); err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

// LoadMessages returns one chat's stored messages in server order.
func (s *SnapshotStore) LoadMessages(chatID int) ([]model.Message, error) {
	rows, err := s.db.Query(
		"SELECT id, text, username, created_at FROM messages WHERE chat_id = ? ORDER BY seq",
		chatID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		var msg model.Message
		var createdAt string
		if err := rows.Scan(&msg.ID, &msg.Text, &msg.User.Username, &createdAt); err != nil {
			return nil, err
		}
		msg.ChatID = chatID
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			msg.CreatedAt = model.Timestamp{Time: t}
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
