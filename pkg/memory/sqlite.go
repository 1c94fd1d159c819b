// Copyright 2025 Deanmachines AI
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package memory

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DefaultTokenModel drives the tiktoken encoding used for history windows.
	DefaultTokenModel = "gpt-4o"

	createMessagesTableSQL = `
CREATE TABLE IF NOT EXISTS session_messages (
    id VARCHAR(255) PRIMARY KEY,
    session_id VARCHAR(255) NOT NULL,
    role VARCHAR(50) NOT NULL,
    content TEXT NOT NULL,
    sequence_num INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_session_id ON session_messages(session_id);
CREATE INDEX IF NOT EXISTS idx_messages_sequence ON session_messages(session_id, sequence_num);
`
)

// SQLiteConfig configures the SQLite-backed store.
type SQLiteConfig struct {
	// Path to the database file. ":memory:" keeps everything in process.
	Path string `yaml:"path"`

	// TokenModel selects the encoding used when applying token budgets.
	TokenModel string `yaml:"token_model"`
}

// SetDefaults applies default configuration values.
func (c *SQLiteConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "agentnet-memory.db"
	}
	if c.TokenModel == "" {
		c.TokenModel = DefaultTokenModel
	}
}

// Validate checks the configuration.
func (c *SQLiteConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

// SQLiteStore is a Store backed by a local SQLite database.
type SQLiteStore struct {
	db      *sql.DB
	counter *TokenCounter
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the database at cfg.Path.
func NewSQLiteStore(cfg *SQLiteConfig) (*SQLiteStore, error) {
	if cfg == nil {
		cfg = &SQLiteConfig{}
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid memory configuration: %w", err)
	}

	if cfg.Path != ":memory:" {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create memory directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, createMessagesTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	counter, err := NewTokenCounter(cfg.TokenModel)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize token counter: %w", err)
	}

	return &SQLiteStore{db: db, counter: counter}, nil
}

// AppendMessage adds a message to a session, assigning the message ID.
func (s *SQLiteStore) AppendMessage(ctx context.Context, sessionID, role, content string) (*Message, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("sessionID cannot be empty")
	}
	if role == "" {
		return nil, fmt.Errorf("role cannot be empty")
	}

	sequenceNum, err := s.nextSequenceNum(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	msg := &Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}

	query := `
INSERT INTO session_messages (id, session_id, role, content, sequence_num, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`
	_, err = s.db.ExecContext(ctx, query,
		msg.ID, msg.SessionID, msg.Role, msg.Content, sequenceNum, msg.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	return msg, nil
}

// History returns the most recent messages of a session that fit within
// tokenBudget, oldest first.
func (s *SQLiteStore) History(ctx context.Context, sessionID string, tokenBudget int) ([]Message, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("sessionID cannot be empty")
	}

	query := `
SELECT id, session_id, role, content, created_at
FROM session_messages
WHERE session_id = ?
ORDER BY sequence_num ASC
`
	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return fitWithinBudget(s.counter, messages, tokenBudget), nil
}

// DeleteSession removes a session and its messages.
func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID cannot be empty")
	}

	_, err := s.db.ExecContext(ctx, `DELETE FROM session_messages WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) nextSequenceNum(ctx context.Context, sessionID string) (int64, error) {
	query := `SELECT COALESCE(MAX(sequence_num), 0) + 1 FROM session_messages WHERE session_id = ?`

	var sequenceNum int64
	if err := s.db.QueryRowContext(ctx, query, sessionID).Scan(&sequenceNum); err != nil {
		return 0, fmt.Errorf("failed to get next sequence number: %w", err)
	}
	return sequenceNum, nil
}
