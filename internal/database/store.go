package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// requestRetention bounds how much request history the maintenance task keeps.
const requestRetention = 180 * 24 * time.Hour

// Store is the data access layer used by handlers and scheduled tasks.
type Store interface {
	AuthorizeChat(ctx context.Context, chatID int64, name string) error
	RevokeChat(ctx context.Context, chatID int64) error
	IsChatAuthorized(ctx context.Context, chatID int64) (bool, error)
	AuthorizedChats(ctx context.Context) ([]Chat, error)

	RecordRequest(ctx context.Context, req Request) error
	RecentRequests(ctx context.Context, limit int) ([]Request, error)

	SetSetting(ctx context.Context, key, value string) error
	Settings(ctx context.Context) (map[string]string, error)

	RunMaintenance(ctx context.Context) error
}

type sqlStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates the SQLite-backed Store.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &sqlStore{db: db, logger: logger.With("component", "store")}
}

func (s *sqlStore) AuthorizeChat(ctx context.Context, chatID int64, name string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chats (id, name, authorized_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		chatID, name, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to authorize chat %d: %w", chatID, err)
	}
	return nil
}

func (s *sqlStore) RevokeChat(ctx context.Context, chatID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chats WHERE id = ?`, chatID)
	if err != nil {
		return fmt.Errorf("failed to revoke chat %d: %w", chatID, err)
	}
	return nil
}

func (s *sqlStore) IsChatAuthorized(ctx context.Context, chatID int64) (bool, error) {
	var one int
	err := s.db.GetContext(ctx, &one, `SELECT 1 FROM chats WHERE id = ?`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check chat authorization: %w", err)
	}
	return true, nil
}

func (s *sqlStore) AuthorizedChats(ctx context.Context) ([]Chat, error) {
	var chats []Chat
	if err := s.db.SelectContext(ctx, &chats, `SELECT id, name, authorized_at FROM chats ORDER BY authorized_at`); err != nil {
		return nil, fmt.Errorf("failed to list authorized chats: %w", err)
	}
	return chats, nil
}

func (s *sqlStore) RecordRequest(ctx context.Context, req Request) error {
	if req.RequestedAt.IsZero() {
		req.RequestedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO requests (user_id, chat_id, kind, title, external_id, requested_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		req.UserID, req.ChatID, req.Kind, req.Title, req.ExternalID, req.RequestedAt)
	if err != nil {
		return fmt.Errorf("failed to record request: %w", err)
	}
	return nil
}

func (s *sqlStore) RecentRequests(ctx context.Context, limit int) ([]Request, error) {
	var requests []Request
	err := s.db.SelectContext(ctx, &requests,
		`SELECT id, user_id, chat_id, kind, title, external_id, requested_at
		 FROM requests ORDER BY requested_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent requests: %w", err)
	}
	return requests, nil
}

func (s *sqlStore) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to store setting %q: %w", key, err)
	}
	return nil
}

func (s *sqlStore) Settings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryxContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	return settings, nil
}

// RunMaintenance prunes old request history and compacts the database. Run
// from the store_maintenance scheduled task.
func (s *sqlStore) RunMaintenance(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-requestRetention)
	result, err := s.db.ExecContext(ctx, `DELETE FROM requests WHERE requested_at < ?`, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune request history: %w", err)
	}
	if pruned, err := result.RowsAffected(); err == nil && pruned > 0 {
		s.logger.Info("Pruned request history", "rows", pruned)
	}

	if _, err := s.db.ExecContext(ctx, `VACUUM`); err != nil {
		return fmt.Errorf("vacuum failed: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `ANALYZE`); err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}
	return nil
}
