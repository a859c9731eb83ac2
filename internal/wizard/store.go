package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when a wizard session id does not
// resolve to live state — it never existed, expired, or was discarded
// after confirmation.
var ErrSessionNotFound = errors.New("wizard: session not found")

// SessionStore persists wizard state between step requests.  State is
// ephemeral: implementations expire sessions after a TTL, matching the
// lose-on-navigation semantics of the booking flow.
type SessionStore interface {
	Save(ctx context.Context, id string, st *State) error
	Get(ctx context.Context, id string) (*State, error)
	Delete(ctx context.Context, id string) error
}

// NewSessionStore returns a redis-backed store, or an in-memory one
// when no redis client is available.  The in-memory fallback keeps a
// single instance usable in development without redis.
func NewSessionStore(client *redis.Client, ttl time.Duration) SessionStore {
	if client == nil {
		return newMemoryStore(ttl)
	}
	return &redisStore{client: client, ttl: ttl}
}

const sessionKeyPrefix = "wizard:session:"

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func (s *redisStore) Save(ctx context.Context, id string, st *State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKeyPrefix+id, raw, s.ttl).Err()
}

func (s *redisStore) Get(ctx context.Context, id string) (*State, error) {
	raw, err := s.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *redisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKeyPrefix+id).Err()
}

type memoryEntry struct {
	state     *State
	expiresAt time.Time
}

type memoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memoryEntry
}

func newMemoryStore(ttl time.Duration) *memoryStore {
	return &memoryStore{ttl: ttl, sessions: make(map[string]memoryEntry)}
}

func (s *memoryStore) Save(_ context.Context, id string, st *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = memoryEntry{state: st, expiresAt: time.Now().Add(s.ttl)}
	return nil
}

func (s *memoryStore) Get(_ context.Context, id string) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok || time.Now().After(e.expiresAt) {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}
	return e.state, nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
