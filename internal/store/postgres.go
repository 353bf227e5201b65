package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jarvis/internal/domain"
)

// Postgres is a pgx/v5-backed Store. Migration is an idempotent
// CREATE TABLE IF NOT EXISTS sequence run once at startup, matching the
// teacher's db package convention.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	p := &Postgres{pool: pool}
	if err := p.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return p, nil
}

func (p *Postgres) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE,
			email TEXT,
			password_hash TEXT,
			is_guest BOOLEAN NOT NULL DEFAULT false,
			google_sub TEXT UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conv ON messages(conversation_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS evc_states (
			conversation_id TEXT PRIMARY KEY,
			blob JSONB NOT NULL,
			last_turn_ts TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS facts (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			category TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			mention_count INT NOT NULL DEFAULT 1,
			last_confirmed TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE(user_id, category, key)
		)`,
	}
	for _, s := range stmts {
		if _, err := p.pool.Exec(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) CreateConversation(ctx context.Context, conv domain.Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO conversations (id, user_id, title) VALUES ($1, $2, $3)`,
		conv.ID, conv.UserID, conv.Title)
	return err
}

func (p *Postgres) GetConversation(ctx context.Context, id string) (domain.Conversation, error) {
	var c domain.Conversation
	var created, updated time.Time
	err := p.pool.QueryRow(ctx,
		`SELECT id, user_id, title, created_at, updated_at FROM conversations WHERE id=$1`, id,
	).Scan(&c.ID, &c.UserID, &c.Title, &created, &updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Conversation{}, ErrNotFound
	}
	if err != nil {
		return domain.Conversation{}, err
	}
	c.CreatedAt = created.Format(time.RFC3339Nano)
	c.UpdatedAt = updated.Format(time.RFC3339Nano)
	return c, nil
}

func (p *Postgres) UpdateConversation(ctx context.Context, conv domain.Conversation) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE conversations SET title=$2, updated_at=now() WHERE id=$1`, conv.ID, conv.Title)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) ListConversations(ctx context.Context, userID string, limit int) ([]domain.Conversation, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, user_id, title, created_at, updated_at FROM conversations
		 WHERE user_id=$1 ORDER BY updated_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Conversation
	for rows.Next() {
		var c domain.Conversation
		var created, updated time.Time
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &created, &updated); err != nil {
			return nil, err
		}
		c.CreatedAt = created.Format(time.RFC3339Nano)
		c.UpdatedAt = updated.Format(time.RFC3339Nano)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (p *Postgres) CreateMessage(ctx context.Context, msg domain.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO messages (id, conversation_id, role, content) VALUES ($1, $2, $3, $4)`,
		msg.ID, msg.ConversationID, msg.Role, msg.Content)
	return err
}

func (p *Postgres) GetMessages(ctx context.Context, convID string, limit int) ([]domain.Message, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, conversation_id, role, content, created_at FROM messages
		 WHERE conversation_id=$1 ORDER BY created_at ASC LIMIT $2`, convID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (p *Postgres) GetRecentMessages(ctx context.Context, userID string, limit int) ([]domain.Message, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT m.id, m.conversation_id, m.role, m.content, m.created_at
		 FROM messages m JOIN conversations c ON c.id = m.conversation_id
		 WHERE c.user_id=$1 ORDER BY m.created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func scanMessages(rows pgx.Rows) ([]domain.Message, error) {
	var out []domain.Message
	for rows.Next() {
		var m domain.Message
		var created time.Time
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &created); err != nil {
			return nil, err
		}
		m.CreatedAt = created.Format(time.RFC3339Nano)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (p *Postgres) SaveEVCState(ctx context.Context, convID string, blob json.RawMessage, lastTurnTS time.Time) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO evc_states (conversation_id, blob, last_turn_ts) VALUES ($1, $2, $3)
		 ON CONFLICT (conversation_id) DO UPDATE SET blob=$2, last_turn_ts=$3`,
		convID, blob, lastTurnTS)
	return err
}

func (p *Postgres) GetEVCState(ctx context.Context, convID string) (json.RawMessage, time.Time, error) {
	var blob json.RawMessage
	var ts time.Time
	err := p.pool.QueryRow(ctx,
		`SELECT blob, last_turn_ts FROM evc_states WHERE conversation_id=$1`, convID,
	).Scan(&blob, &ts)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, time.Time{}, ErrNotFound
	}
	return blob, ts, err
}

func (p *Postgres) UpsertFact(ctx context.Context, fact domain.Fact) error {
	if fact.ID == "" {
		fact.ID = uuid.NewString()
	}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO facts (id, user_id, category, key, value, confidence, mention_count, last_confirmed)
		 VALUES ($1, $2, $3, $4, $5, $6, 1, now())
		 ON CONFLICT (user_id, category, key) DO UPDATE
		 SET value=$5, confidence=$6, mention_count=facts.mention_count+1, last_confirmed=now()`,
		fact.ID, fact.UserID, fact.Category, fact.Key, fact.Value, fact.Confidence)
	return err
}

func (p *Postgres) GetFacts(ctx context.Context, userID string) ([]domain.Fact, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, user_id, category, key, value, confidence, mention_count, last_confirmed
		 FROM facts WHERE user_id=$1 ORDER BY category, key`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Fact
	for rows.Next() {
		var f domain.Fact
		var lastConfirmed time.Time
		if err := rows.Scan(&f.ID, &f.UserID, &f.Category, &f.Key, &f.Value, &f.Confidence, &f.MentionCount, &lastConfirmed); err != nil {
			return nil, err
		}
		f.LastConfirmed = lastConfirmed.Format(time.RFC3339Nano)
		out = append(out, f)
	}
	return out, rows.Err()
}

func (p *Postgres) GetFact(ctx context.Context, id string) (domain.Fact, error) {
	var f domain.Fact
	var lastConfirmed time.Time
	err := p.pool.QueryRow(ctx,
		`SELECT id, user_id, category, key, value, confidence, mention_count, last_confirmed FROM facts WHERE id=$1`, id,
	).Scan(&f.ID, &f.UserID, &f.Category, &f.Key, &f.Value, &f.Confidence, &f.MentionCount, &lastConfirmed)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Fact{}, ErrNotFound
	}
	f.LastConfirmed = lastConfirmed.Format(time.RFC3339Nano)
	return f, err
}

func (p *Postgres) DeleteFact(ctx context.Context, userID, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM facts WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) CreateUser(ctx context.Context, user domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO users (id, username, email, password_hash, is_guest, google_sub) VALUES ($1,$2,$3,$4,$5,$6)`,
		user.ID, nullable(user.Username), nullable(user.Email), user.PasswordHash, user.IsGuest, nullable(user.GoogleSub))
	return err
}

func (p *Postgres) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return p.scanUser(ctx, `SELECT id, username, email, password_hash, is_guest, google_sub, created_at FROM users WHERE username=$1`, username)
}

func (p *Postgres) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return p.scanUser(ctx, `SELECT id, username, email, password_hash, is_guest, google_sub, created_at FROM users WHERE id=$1`, id)
}

func (p *Postgres) GetUserByGoogleSub(ctx context.Context, sub string) (domain.User, error) {
	return p.scanUser(ctx, `SELECT id, username, email, password_hash, is_guest, google_sub, created_at FROM users WHERE google_sub=$1`, sub)
}

func (p *Postgres) scanUser(ctx context.Context, q, arg string) (domain.User, error) {
	var u domain.User
	var username, email, googleSub *string
	var created time.Time
	err := p.pool.QueryRow(ctx, q, arg).Scan(&u.ID, &username, &email, &u.PasswordHash, &u.IsGuest, &googleSub, &created)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	u.Username = deref(username)
	u.Email = deref(email)
	u.GoogleSub = deref(googleSub)
	u.CreatedAt = created.Format(time.RFC3339Nano)
	return u, nil
}

func (p *Postgres) UpdateUser(ctx context.Context, user domain.User) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE users SET username=$2, email=$3, password_hash=$4, is_guest=$5, google_sub=$6 WHERE id=$1`,
		user.ID, nullable(user.Username), nullable(user.Email), user.PasswordHash, user.IsGuest, nullable(user.GoogleSub))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
