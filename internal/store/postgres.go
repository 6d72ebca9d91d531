package store

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/punchamoorthee/favoritemovies/internal/domain"
	"github.com/punchamoorthee/favoritemovies/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// Schema creates the tables used by Store.
const Schema = `
CREATE TABLE IF NOT EXISTS sessions (
	handle        UUID PRIMARY KEY,
	request_token TEXT NOT NULL,
	session_id    TEXT NOT NULL,
	user_id       BIGINT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS favorite_events (
	id          BIGSERIAL PRIMARY KEY,
	user_id     BIGINT NOT NULL,
	movie_id    BIGINT NOT NULL,
	favorite    BOOLEAN NOT NULL,
	status_code INTEGER NOT NULL,
	applied     BOOLEAN NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS favorite_events_user_movie_idx ON favorite_events (user_id, movie_id);
`

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	db      DBTX
	pool    *pgxpool.Pool
	builder sq.StatementBuilderType
}

func NewStore(ctx context.Context, connString string) (*Store, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	s := New(pool)
	s.pool = pool
	return s, nil
}

// New wraps an existing connection.
func New(db DBTX) *Store {
	return &Store{db: db, builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// SaveSession stores sess under handle, replacing any previous value.
func (s *Store) SaveSession(ctx context.Context, handle uuid.UUID, sess domain.Session) error {
	sql, args, err := s.builder.Insert("sessions").
		Columns("handle", "request_token", "session_id", "user_id").
		Values(handle.String(), sess.RequestToken, sess.SessionID, sess.UserID).
		Suffix("ON CONFLICT (handle) DO UPDATE SET request_token = EXCLUDED.request_token, session_id = EXCLUDED.session_id, user_id = EXCLUDED.user_id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build session insert: %w", err)
	}
	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("session insert failed: %w", err)
	}
	return nil
}

// GetSession retrieves the session stored under handle.
func (s *Store) GetSession(ctx context.Context, handle uuid.UUID) (domain.Session, error) {
	sql, args, err := s.builder.Select("request_token", "session_id", "user_id").
		From("sessions").
		Where(sq.Eq{"handle": handle.String()}).
		ToSql()
	if err != nil {
		return domain.Session{}, fmt.Errorf("build session select: %w", err)
	}

	var sess domain.Session
	err = s.db.QueryRow(ctx, sql, args...).Scan(&sess.RequestToken, &sess.SessionID, &sess.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Session{}, ErrSessionNotFound
		}
		return domain.Session{}, fmt.Errorf("session query failed: %w", err)
	}
	return sess, nil
}

// DeleteSession removes handle. Deleting an unknown handle is not an error.
func (s *Store) DeleteSession(ctx context.Context, handle uuid.UUID) error {
	sql, args, err := s.builder.Delete("sessions").
		Where(sq.Eq{"handle": handle.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build session delete: %w", err)
	}
	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("session delete failed: %w", err)
	}
	return nil
}

// RecordFavorite appends one favorite toggle attempt to the audit log.
func (s *Store) RecordFavorite(ctx context.Context, ev models.FavoriteEvent) error {
	sql, args, err := s.builder.Insert("favorite_events").
		Columns("user_id", "movie_id", "favorite", "status_code", "applied", "created_at").
		Values(ev.UserID, ev.MovieID, ev.Favorite, ev.StatusCode, ev.Applied, ev.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build favorite event insert: %w", err)
	}
	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("favorite event insert failed: %w", err)
	}
	return nil
}

// FavoriteEvents lists the audited toggles of one user, newest first.
func (s *Store) FavoriteEvents(ctx context.Context, userID int64, limit uint64) ([]models.FavoriteEvent, error) {
	sql, args, err := s.builder.Select("user_id", "movie_id", "favorite", "status_code", "applied", "created_at").
		From("favorite_events").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build favorite event select: %w", err)
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("favorite event query failed: %w", err)
	}
	defer rows.Close()

	var events []models.FavoriteEvent
	for rows.Next() {
		var ev models.FavoriteEvent
		if err := rows.Scan(&ev.UserID, &ev.MovieID, &ev.Favorite, &ev.StatusCode, &ev.Applied, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan favorite event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
