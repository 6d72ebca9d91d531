package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/punchamoorthee/favoritemovies/internal/domain"
)

var testSession = domain.Session{RequestToken: "T1", SessionID: "S1", UserID: 42}

type brokenRepo struct{}

func (brokenRepo) SaveSession(context.Context, uuid.UUID, domain.Session) error {
	return errors.New("unavailable")
}

func (brokenRepo) GetSession(context.Context, uuid.UUID) (domain.Session, error) {
	return domain.Session{}, errors.New("unavailable")
}

func (brokenRepo) DeleteSession(context.Context, uuid.UUID) error {
	return errors.New("unavailable")
}

func TestSessions_MemoryFallback(t *testing.T) {
	s := NewSessions(nil, nil, zaptest.NewLogger(t))
	handle := uuid.New()

	_, err := s.GetSession(context.Background(), handle)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, s.SaveSession(context.Background(), handle, testSession))
	got, err := s.GetSession(context.Background(), handle)
	require.NoError(t, err)
	assert.Equal(t, testSession, got)

	require.NoError(t, s.DeleteSession(context.Background(), handle))
	_, err = s.GetSession(context.Background(), handle)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessions_CacheMissRefillsFromDurable(t *testing.T) {
	client, server := newTestRedis(t)
	cache := NewSessionCache(client, "test", time.Minute)
	durable := NewMemorySessions()
	s := NewSessions(cache, durable, zaptest.NewLogger(t))
	handle := uuid.New()

	require.NoError(t, durable.SaveSession(context.Background(), handle, testSession))
	assert.False(t, server.Exists("test:"+handle.String()))

	got, err := s.GetSession(context.Background(), handle)
	require.NoError(t, err)
	assert.Equal(t, testSession, got)
	assert.True(t, server.Exists("test:"+handle.String()))
}

func TestSessions_CacheFailureFallsBackToDurable(t *testing.T) {
	durable := NewMemorySessions()
	s := NewSessions(brokenRepo{}, durable, zaptest.NewLogger(t))
	handle := uuid.New()

	require.NoError(t, s.SaveSession(context.Background(), handle, testSession))

	got, err := s.GetSession(context.Background(), handle)
	require.NoError(t, err)
	assert.Equal(t, testSession, got)
}

func TestSessions_CacheOnly(t *testing.T) {
	client, _ := newTestRedis(t)
	s := NewSessions(NewSessionCache(client, "test", time.Minute), nil, zaptest.NewLogger(t))
	handle := uuid.New()

	require.NoError(t, s.SaveSession(context.Background(), handle, testSession))
	got, err := s.GetSession(context.Background(), handle)
	require.NoError(t, err)
	assert.Equal(t, testSession, got)

	require.Error(t, NewSessions(brokenRepo{}, nil, zaptest.NewLogger(t)).SaveSession(context.Background(), handle, testSession))
}

func TestSessions_DeleteReportsErrors(t *testing.T) {
	s := NewSessions(brokenRepo{}, NewMemorySessions(), zaptest.NewLogger(t))
	require.Error(t, s.DeleteSession(context.Background(), uuid.New()))
}
