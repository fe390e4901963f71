package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"rukami/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNoSession is returned when a chat has no live session.
var ErrNoSession = errors.New("no bot session")

// Session is an authenticated chat.
type Session struct {
	ID        string    `json:"id"`
	ChatID    int64     `json:"chat_id"`
	UserID    uint      `json:"user_id"`
	UserName  string    `json:"user_name"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionStore keeps bot sessions keyed by a generated id, with a chat index.
type SessionStore interface {
	Open(ctx context.Context, chatID int64, user *models.User) (*Session, error)
	Get(ctx context.Context, chatID int64) (*Session, error)
	Close(ctx context.Context, chatID int64) error
}

func newSession(chatID int64, user *models.User) *Session {
	return &Session{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		UserID:    user.ID,
		UserName:  user.Name,
		CreatedAt: time.Now().UTC(),
	}
}

// MemoryStore is a process-local SessionStore.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]memoryEntry
	byChat   map[int64]string
}

type memoryEntry struct {
	session   *Session
	expiresAt time.Time
}

// NewMemoryStore creates a MemoryStore whose sessions expire after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]memoryEntry),
		byChat:   make(map[int64]string),
	}
}

func (m *MemoryStore) Open(_ context.Context, chatID int64, user *models.User) (*Session, error) {
	s := newSession(chatID, user)

	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.byChat[chatID]; ok {
		delete(m.sessions, old)
	}
	m.sessions[s.ID] = memoryEntry{session: s, expiresAt: m.now().Add(m.ttl)}
	m.byChat[chatID] = s.ID
	return s, nil
}

func (m *MemoryStore) Get(_ context.Context, chatID int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byChat[chatID]
	if !ok {
		return nil, ErrNoSession
	}
	entry, ok := m.sessions[id]
	if !ok || !m.now().Before(entry.expiresAt) {
		delete(m.sessions, id)
		delete(m.byChat, chatID)
		return nil, ErrNoSession
	}
	s := *entry.session
	return &s, nil
}

func (m *MemoryStore) Close(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byChat[chatID]; ok {
		delete(m.sessions, id)
		delete(m.byChat, chatID)
	}
	return nil
}

// RedisStore keeps sessions in Redis so they survive bot restarts.
//
// Keys:
//
//	bot:session:<id>    JSON-encoded Session
//	bot:chat:<chat id>  session id
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a RedisStore whose keys expire after ttl.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(id string) string { return "bot:session:" + id }

func chatKey(chatID int64) string { return "bot:chat:" + strconv.FormatInt(chatID, 10) }

func (r *RedisStore) Open(ctx context.Context, chatID int64, user *models.User) (*Session, error) {
	s := newSession(chatID, user)
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}

	old, err := r.client.Get(ctx, chatKey(chatID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read chat index: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if old != "" {
			pipe.Del(ctx, sessionKey(old))
		}
		pipe.Set(ctx, sessionKey(s.ID), payload, r.ttl)
		pipe.Set(ctx, chatKey(chatID), s.ID, r.ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return s, nil
}

func (r *RedisStore) Get(ctx context.Context, chatID int64) (*Session, error) {
	id, err := r.client.Get(ctx, chatKey(chatID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read chat index: %w", err)
	}

	raw, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) Close(ctx context.Context, chatID int64) error {
	id, err := r.client.Get(ctx, chatKey(chatID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read chat index: %w", err)
	}
	if err := r.client.Del(ctx, sessionKey(id), chatKey(chatID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
