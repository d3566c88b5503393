package memory

import (
	"context"
	"sync"

	"culturequiz-service/internal/domain"
)

// AttemptStore is an in-memory implementation of app.AttemptStore. It keeps
// the same optimistic-versioning contract as the Postgres store so the
// coordinator behaves identically against either backend.
type AttemptStore struct {
	mu    sync.RWMutex
	users map[string]*userState
}

type userState struct {
	aggregate    domain.UserQuizAggregate
	attempts     []domain.AttemptRecord
	achievements []domain.AchievementRecord
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{users: make(map[string]*userState)}
}

func (s *AttemptStore) LoadAggregate(_ context.Context, userID string) (domain.UserQuizAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if state, ok := s.users[userID]; ok {
		return state.aggregate, nil
	}
	// First submission: zero aggregate at version 0.
	return domain.UserQuizAggregate{}, nil
}

func (s *AttemptStore) LoadAchievements(_ context.Context, userID string) ([]domain.AchievementRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	out := make([]domain.AchievementRecord, len(state.achievements))
	copy(out, state.achievements)
	return out, nil
}

func (s *AttemptStore) Attempts(_ context.Context, userID string) ([]domain.AttemptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	out := make([]domain.AttemptRecord, len(state.attempts))
	copy(out, state.attempts)
	return out, nil
}

// CommitAttempt applies ledger append, aggregate replacement, and achievement
// appends under one lock. The caller's aggregate must carry the successor of
// the stored version or the commit is rejected with ErrVersionConflict.
func (s *AttemptStore) CommitAttempt(_ context.Context, userID string, attempt domain.AttemptRecord, aggregate domain.UserQuizAggregate, earned []domain.AchievementRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.users[userID]
	if !ok {
		state = &userState{}
		s.users[userID] = state
	}
	if aggregate.Version != state.aggregate.Version+1 {
		return domain.ErrVersionConflict
	}

	state.attempts = append(state.attempts, attempt)
	state.aggregate = aggregate
	state.achievements = append(state.achievements, earned...)
	return nil
}
