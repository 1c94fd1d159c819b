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

// Package memory provides conversation history storage shared across agents.
// Sessions accumulate messages in order; History applies a token budget so
// callers always receive a window that fits their model's context.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkoukk/tiktoken-go"
)

// Message is a single conversation turn.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists session messages.
type Store interface {
	// AppendMessage adds a message to a session, assigning the message ID.
	AppendMessage(ctx context.Context, sessionID, role, content string) (*Message, error)

	// History returns the most recent messages of a session that fit within
	// tokenBudget, oldest first. A budget <= 0 returns the full history.
	History(ctx context.Context, sessionID string, tokenBudget int) ([]Message, error)

	// DeleteSession removes a session and its messages.
	DeleteSession(ctx context.Context, sessionID string) error

	Close() error
}

// TokenCounter counts tokens for a model's encoding.
type TokenCounter struct {
	encoding *tiktoken.Tiktoken
	model    string
}

var (
	encodingCache   = make(map[string]*tiktoken.Tiktoken)
	encodingCacheMu sync.RWMutex
)

// NewTokenCounter creates a counter for the given model, falling back to the
// cl100k_base encoding when the model is unknown.
func NewTokenCounter(model string) (*TokenCounter, error) {
	encodingCacheMu.RLock()
	cached, ok := encodingCache[model]
	encodingCacheMu.RUnlock()
	if ok {
		return &TokenCounter{encoding: cached, model: model}, nil
	}

	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoding, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("failed to get encoding: %w", err)
		}
	}

	encodingCacheMu.Lock()
	encodingCache[model] = encoding
	encodingCacheMu.Unlock()

	return &TokenCounter{encoding: encoding, model: model}, nil
}

// Count returns the token count for text.
func (tc *TokenCounter) Count(text string) int {
	return len(tc.encoding.Encode(text, nil, nil))
}

// CountMessage counts a message's tokens including role framing overhead.
func (tc *TokenCounter) CountMessage(msg Message) int {
	// <|start|>role<|message|>content<|end|>
	const tokensPerMessage = 3
	return tokensPerMessage + tc.Count(msg.Role) + tc.Count(msg.Content)
}

// Model returns the model name this counter was built for.
func (tc *TokenCounter) Model() string {
	return tc.model
}

// fitWithinBudget keeps the most recent messages that fit within maxTokens,
// preserving chronological order.
func fitWithinBudget(tc *TokenCounter, messages []Message, maxTokens int) []Message {
	if maxTokens <= 0 || len(messages) == 0 {
		return messages
	}

	currentTokens := 0
	start := len(messages)
	for i := len(messages) - 1; i >= 0; i-- {
		msgTokens := tc.CountMessage(messages[i])
		if currentTokens+msgTokens > maxTokens {
			break
		}
		currentTokens += msgTokens
		start = i
	}

	return messages[start:]
}
