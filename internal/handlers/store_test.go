package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vancomm/minefield/internal/minefield"
	"github.com/vancomm/minefield/internal/repository"
)

// memStore keeps sessions and slots in memory the way the postgres
// queries would.
type memStore struct {
	mu       sync.Mutex
	nextId   int64
	sessions map[int64]repository.GameSession
	slots    map[string]repository.SaveSlot
}

func newMemStore() *memStore {
	return &memStore{
		sessions: make(map[int64]repository.GameSession),
		slots:    make(map[string]repository.SaveSlot),
	}
}

func now() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: time.Now(), Valid: true}
}

func (s *memStore) CreateGameSession(ctx context.Context, f *minefield.Minefield) (*repository.GameSession, error) {
	state, err := f.MarshalBinary()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextId++
	session := repository.GameSession{
		GameSessionId: s.nextId,
		RowCount:      int32(f.Rows()),
		ColCount:      int32(f.Columns()),
		MineCount:     int32(f.MineCount()),
		Outcome:       f.Outcome().String(),
		State:         state,
		StartedAt:     now(),
		UpdatedAt:     now(),
	}
	if f.IsGameOver() {
		session.EndedAt = now()
	}
	s.sessions[session.GameSessionId] = session
	return &session, nil
}

func (s *memStore) FetchGameSession(ctx context.Context, gameSessionId int64) (*repository.GameSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[gameSessionId]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &session, nil
}

func (s *memStore) UpdateGameSession(ctx context.Context, gameSessionId int64, f *minefield.Minefield) (*repository.GameSession, error) {
	state, err := f.MarshalBinary()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[gameSessionId]
	if !ok {
		return nil, repository.ErrNotFound
	}
	session.State = state
	session.Outcome = f.Outcome().String()
	session.UpdatedAt = now()
	if f.IsGameOver() && !session.EndedAt.Valid {
		session.EndedAt = now()
	}
	s.sessions[gameSessionId] = session
	return &session, nil
}

func (s *memStore) CreateSaveSlot(ctx context.Context, name string, f *minefield.Minefield) (*repository.SaveSlot, error) {
	state, err := f.MarshalBinary()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.slots[name]; ok {
		return nil, repository.ErrSlotTaken
	}
	slot := repository.SaveSlot{
		Name:      name,
		RowCount:  int32(f.Rows()),
		ColCount:  int32(f.Columns()),
		MineCount: int32(f.MineCount()),
		State:     state,
		SavedAt:   now(),
	}
	s.slots[name] = slot
	return &slot, nil
}

func (s *memStore) FetchSaveSlot(ctx context.Context, name string) (*repository.SaveSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[name]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &slot, nil
}
