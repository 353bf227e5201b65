// Package store implements the Persistence Adapter (C7): a storage-agnostic
// interface plus postgres (pgx) and sqlite (mattn/go-sqlite3) backends.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"jarvis/internal/domain"
)

var (
	ErrNotFound                  = errors.New("store: not found")
	ErrConversationOwnerMismatch = errors.New("store: conversation owner mismatch")
)

// Store is the contract the core consumes, independent of backend.
type Store interface {
	CreateConversation(ctx context.Context, conv domain.Conversation) error
	GetConversation(ctx context.Context, id string) (domain.Conversation, error)
	UpdateConversation(ctx context.Context, conv domain.Conversation) error
	ListConversations(ctx context.Context, userID string, limit int) ([]domain.Conversation, error)

	CreateMessage(ctx context.Context, msg domain.Message) error
	GetMessages(ctx context.Context, convID string, limit int) ([]domain.Message, error)
	GetRecentMessages(ctx context.Context, userID string, limit int) ([]domain.Message, error)

	SaveEVCState(ctx context.Context, convID string, blob json.RawMessage, lastTurnTS time.Time) error
	GetEVCState(ctx context.Context, convID string) (json.RawMessage, time.Time, error)

	UpsertFact(ctx context.Context, fact domain.Fact) error
	GetFacts(ctx context.Context, userID string) ([]domain.Fact, error)
	GetFact(ctx context.Context, id string) (domain.Fact, error)
	DeleteFact(ctx context.Context, userID, id string) error

	CreateUser(ctx context.Context, user domain.User) error
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByGoogleSub(ctx context.Context, sub string) (domain.User, error)
	UpdateUser(ctx context.Context, user domain.User) error

	Close() error
}

// EVCBlob is the JSON shape persisted for a conversation's EVC snapshot:
// the full engine state plus an optional tracker serialization.
type EVCBlob struct {
	domain.EVCState
	UserEmotionTracker *domain.TrackerState `json:"user_emotion_tracker,omitempty"`
}
