package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"jarvis/internal/domain"
)

// SQLite is a database/sql + mattn/go-sqlite3 Store, selected by
// DB_BACKEND=sqlite. JSON columns are stored as TEXT, same idempotent
// migration style as Postgres.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1) // mattn/go-sqlite3 serializes writes; avoid SQLITE_BUSY under concurrent handlers
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE,
			email TEXT,
			password_hash TEXT,
			is_guest INTEGER NOT NULL DEFAULT 0,
			google_sub TEXT UNIQUE,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conv ON messages(conversation_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS evc_states (
			conversation_id TEXT PRIMARY KEY,
			blob TEXT NOT NULL,
			last_turn_ts TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS facts (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			category TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			confidence REAL NOT NULL,
			mention_count INTEGER NOT NULL DEFAULT 1,
			last_confirmed TEXT NOT NULL,
			UNIQUE(user_id, category, key)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func now() string { return time.Now().UTC().Format(time.RFC3339Nano) }

func (s *SQLite) CreateConversation(ctx context.Context, conv domain.Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}
	ts := now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, user_id, title, created_at, updated_at) VALUES (?,?,?,?,?)`,
		conv.ID, conv.UserID, conv.Title, ts, ts)
	return err
}

func (s *SQLite) GetConversation(ctx context.Context, id string) (domain.Conversation, error) {
	var c domain.Conversation
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, created_at, updated_at FROM conversations WHERE id=?`, id,
	).Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Conversation{}, ErrNotFound
	}
	return c, err
}

func (s *SQLite) UpdateConversation(ctx context.Context, conv domain.Conversation) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET title=?, updated_at=? WHERE id=?`, conv.Title, now(), conv.ID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (s *SQLite) ListConversations(ctx context.Context, userID string, limit int) ([]domain.Conversation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, created_at, updated_at FROM conversations
		 WHERE user_id=? ORDER BY updated_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Conversation
	for rows.Next() {
		var c domain.Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLite) CreateMessage(ctx context.Context, msg domain.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, conversation_id, role, content, created_at) VALUES (?,?,?,?,?)`,
		msg.ID, msg.ConversationID, msg.Role, msg.Content, now())
	return err
}

func (s *SQLite) GetMessages(ctx context.Context, convID string, limit int) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, role, content, created_at FROM messages
		 WHERE conversation_id=? ORDER BY created_at ASC LIMIT ?`, convID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSQLiteMessages(rows)
}

func (s *SQLite) GetRecentMessages(ctx context.Context, userID string, limit int) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.id, m.conversation_id, m.role, m.content, m.created_at
		 FROM messages m JOIN conversations c ON c.id = m.conversation_id
		 WHERE c.user_id=? ORDER BY m.created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSQLiteMessages(rows)
}

func scanSQLiteMessages(rows *sql.Rows) ([]domain.Message, error) {
	var out []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLite) SaveEVCState(ctx context.Context, convID string, blob json.RawMessage, lastTurnTS time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO evc_states (conversation_id, blob, last_turn_ts) VALUES (?,?,?)
		 ON CONFLICT(conversation_id) DO UPDATE SET blob=excluded.blob, last_turn_ts=excluded.last_turn_ts`,
		convID, string(blob), lastTurnTS.UTC().Format(time.RFC3339Nano))
	return err
}

func (s *SQLite) GetEVCState(ctx context.Context, convID string) (json.RawMessage, time.Time, error) {
	var blob, ts string
	err := s.db.QueryRowContext(ctx,
		`SELECT blob, last_turn_ts FROM evc_states WHERE conversation_id=?`, convID,
	).Scan(&blob, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	parsed, _ := time.Parse(time.RFC3339Nano, ts)
	return json.RawMessage(blob), parsed, nil
}

func (s *SQLite) UpsertFact(ctx context.Context, fact domain.Fact) error {
	if fact.ID == "" {
		fact.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO facts (id, user_id, category, key, value, confidence, mention_count, last_confirmed)
		 VALUES (?,?,?,?,?,?,1,?)
		 ON CONFLICT(user_id, category, key) DO UPDATE SET
		   value=excluded.value, confidence=excluded.confidence,
		   mention_count=mention_count+1, last_confirmed=excluded.last_confirmed`,
		fact.ID, fact.UserID, fact.Category, fact.Key, fact.Value, fact.Confidence, now())
	return err
}

func (s *SQLite) GetFacts(ctx context.Context, userID string) ([]domain.Fact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, category, key, value, confidence, mention_count, last_confirmed
		 FROM facts WHERE user_id=? ORDER BY category, key`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Fact
	for rows.Next() {
		var f domain.Fact
		if err := rows.Scan(&f.ID, &f.UserID, &f.Category, &f.Key, &f.Value, &f.Confidence, &f.MentionCount, &f.LastConfirmed); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *SQLite) GetFact(ctx context.Context, id string) (domain.Fact, error) {
	var f domain.Fact
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, category, key, value, confidence, mention_count, last_confirmed FROM facts WHERE id=?`, id,
	).Scan(&f.ID, &f.UserID, &f.Category, &f.Key, &f.Value, &f.Confidence, &f.MentionCount, &f.LastConfirmed)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Fact{}, ErrNotFound
	}
	return f, err
}

func (s *SQLite) DeleteFact(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM facts WHERE id=? AND user_id=?`, id, userID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (s *SQLite) CreateUser(ctx context.Context, user domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, is_guest, google_sub, created_at) VALUES (?,?,?,?,?,?,?)`,
		user.ID, nullableSQLite(user.Username), nullableSQLite(user.Email), user.PasswordHash, boolToInt(user.IsGuest), nullableSQLite(user.GoogleSub), now())
	return err
}

func (s *SQLite) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.scanUser(ctx, `SELECT id, username, email, password_hash, is_guest, google_sub, created_at FROM users WHERE username=?`, username)
}

func (s *SQLite) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return s.scanUser(ctx, `SELECT id, username, email, password_hash, is_guest, google_sub, created_at FROM users WHERE id=?`, id)
}

func (s *SQLite) GetUserByGoogleSub(ctx context.Context, sub string) (domain.User, error) {
	return s.scanUser(ctx, `SELECT id, username, email, password_hash, is_guest, google_sub, created_at FROM users WHERE google_sub=?`, sub)
}

func (s *SQLite) scanUser(ctx context.Context, q, arg string) (domain.User, error) {
	var u domain.User
	var username, email, googleSub sql.NullString
	var isGuest int
	err := s.db.QueryRowContext(ctx, q, arg).Scan(&u.ID, &username, &email, &u.PasswordHash, &isGuest, &googleSub, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	u.Username = username.String
	u.Email = email.String
	u.GoogleSub = googleSub.String
	u.IsGuest = isGuest != 0
	return u, nil
}

func (s *SQLite) UpdateUser(ctx context.Context, user domain.User) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET username=?, email=?, password_hash=?, is_guest=?, google_sub=? WHERE id=?`,
		nullableSQLite(user.Username), nullableSQLite(user.Email), user.PasswordHash, boolToInt(user.IsGuest), nullableSQLite(user.GoogleSub), user.ID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableSQLite(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
