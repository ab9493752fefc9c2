// Package memstore is an in-memory RoomStore with the same optimistic-commit
// semantics as the redis-backed store. It backs unit tests and local
// development runs without external services.
package memstore

import (
	"context"
	"sync"

	"github.com/ashwinrao/auction-arena/internal/domain"
	"github.com/ashwinrao/auction-arena/internal/store"
)

type entry struct {
	room    *domain.Room
	version uint64
}

type Store struct {
	mu      sync.RWMutex
	rooms   map[string]*entry
	subs    map[string]map[int]func(*domain.Room)
	nextSub int
}

func New() *Store {
	return &Store{
		rooms: make(map[string]*entry),
		subs:  make(map[string]map[int]func(*domain.Room)),
	}
}

func (s *Store) Get(ctx context.Context, code string) (*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.rooms[code]
	if !ok {
		return nil, store.ErrNotFound
	}
	return e.room.Clone(), nil
}

func (s *Store) Create(ctx context.Context, room *domain.Room) error {
	s.mu.Lock()
	if _, ok := s.rooms[room.Code]; ok {
		s.mu.Unlock()
		return store.ErrCodeTaken
	}
	committed := room.Clone()
	s.rooms[room.Code] = &entry{room: committed, version: 1}
	subs := s.subscribers(room.Code)
	s.mu.Unlock()

	s.notify(subs, committed)
	return nil
}

func (s *Store) AtomicUpdate(ctx context.Context, code string, fn store.UpdateFn) (*domain.Room, error) {
	for attempt := 0; attempt < store.MaxUpdateAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s.mu.RLock()
		e, ok := s.rooms[code]
		if !ok {
			s.mu.RUnlock()
			return nil, store.ErrNotFound
		}
		snapshot := e.room.Clone()
		version := e.version
		s.mu.RUnlock()

		// fn runs on a private clone outside the lock; a version bump by a
		// concurrent commit invalidates this attempt.
		next, err := fn(snapshot)
		if err != nil {
			return nil, err
		}

		committed := next.Clone()

		s.mu.Lock()
		e, ok = s.rooms[code]
		if !ok {
			s.mu.Unlock()
			return nil, store.ErrNotFound
		}
		if e.version != version {
			s.mu.Unlock()
			continue
		}
		e.room = committed
		e.version++
		subs := s.subscribers(code)
		s.mu.Unlock()

		s.notify(subs, committed)
		return committed.Clone(), nil
	}
	return nil, store.ErrTooMuchContention
}

func (s *Store) Subscribe(ctx context.Context, code string, fn func(*domain.Room)) (func(), error) {
	s.mu.Lock()
	e, ok := s.rooms[code]
	if !ok {
		s.mu.Unlock()
		return nil, store.ErrNotFound
	}
	current := e.room.Clone()
	if s.subs[code] == nil {
		s.subs[code] = make(map[int]func(*domain.Room))
	}
	id := s.nextSub
	s.nextSub++
	s.subs[code][id] = fn

	// Deliver the current snapshot before releasing the lock: a commit racing
	// with registration would otherwise notify first, leaving this older
	// snapshot to arrive after the newer one.
	fn(current)
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if m, ok := s.subs[code]; ok {
			delete(m, id)
			if len(m) == 0 {
				delete(s.subs, code)
			}
		}
	}
	return cancel, nil
}

func (s *Store) ListCodes(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	codes := make([]string, 0, len(s.rooms))
	for code := range s.rooms {
		codes = append(codes, code)
	}
	return codes, nil
}

// subscribers must be called with the mutex held.
func (s *Store) subscribers(code string) []func(*domain.Room) {
	m := s.subs[code]
	if len(m) == 0 {
		return nil
	}
	fns := make([]func(*domain.Room), 0, len(m))
	for _, fn := range m {
		fns = append(fns, fn)
	}
	return fns
}

func (s *Store) notify(subs []func(*domain.Room), room *domain.Room) {
	for _, fn := range subs {
		fn(room.Clone())
	}
}
