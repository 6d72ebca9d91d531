package store

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/punchamoorthee/favoritemovies/internal/domain"
)

// SessionRepository stores authenticated sessions under opaque handles.
type SessionRepository interface {
	SaveSession(ctx context.Context, handle uuid.UUID, sess domain.Session) error
	GetSession(ctx context.Context, handle uuid.UUID) (domain.Session, error)
	DeleteSession(ctx context.Context, handle uuid.UUID) error
}

// Sessions puts an optional cache in front of a durable repository.
// A cache miss falls through to the durable copy and refills the cache.
type Sessions struct {
	cache   SessionRepository
	durable SessionRepository
	logger  *zap.Logger
}

// NewSessions combines the configured backends. Either may be nil; with
// neither, sessions live in process memory.
func NewSessions(cache, durable SessionRepository, logger *zap.Logger) *Sessions {
	if cache == nil && durable == nil {
		durable = NewMemorySessions()
	}
	return &Sessions{cache: cache, durable: durable, logger: logger}
}

func (s *Sessions) SaveSession(ctx context.Context, handle uuid.UUID, sess domain.Session) error {
	if s.durable != nil {
		if err := s.durable.SaveSession(ctx, handle, sess); err != nil {
			return err
		}
	}
	if s.cache != nil {
		if err := s.cache.SaveSession(ctx, handle, sess); err != nil {
			if s.durable == nil {
				return err
			}
			s.logger.Warn("session cache write failed", zap.Error(err))
		}
	}
	return nil
}

func (s *Sessions) GetSession(ctx context.Context, handle uuid.UUID) (domain.Session, error) {
	if s.cache != nil {
		sess, err := s.cache.GetSession(ctx, handle)
		if err == nil {
			return sess, nil
		}
		if s.durable == nil {
			return domain.Session{}, err
		}
		if !errors.Is(err, ErrSessionNotFound) {
			s.logger.Warn("session cache read failed", zap.Error(err))
		}
	}

	sess, err := s.durable.GetSession(ctx, handle)
	if err != nil {
		return domain.Session{}, err
	}
	if s.cache != nil {
		if err := s.cache.SaveSession(ctx, handle, sess); err != nil {
			s.logger.Warn("session cache refill failed", zap.Error(err))
		}
	}
	return sess, nil
}

func (s *Sessions) DeleteSession(ctx context.Context, handle uuid.UUID) error {
	var errs []error
	if s.cache != nil {
		errs = append(errs, s.cache.DeleteSession(ctx, handle))
	}
	if s.durable != nil {
		errs = append(errs, s.durable.DeleteSession(ctx, handle))
	}
	return errors.Join(errs...)
}

// MemorySessions is a process-local SessionRepository.
type MemorySessions struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]domain.Session
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[uuid.UUID]domain.Session)}
}

func (m *MemorySessions) SaveSession(_ context.Context, handle uuid.UUID, sess domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[handle] = sess
	return nil
}

func (m *MemorySessions) GetSession(_ context.Context, handle uuid.UUID) (domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[handle]
	if !ok {
		return domain.Session{}, ErrSessionNotFound
	}
	return sess, nil
}

func (m *MemorySessions) DeleteSession(_ context.Context, handle uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, handle)
	return nil
}
