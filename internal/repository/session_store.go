package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"property-intake/internal/chat"
	"property-intake/internal/model"
)

// SessionStore persists chat state snapshots keyed by session id
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (chat.State, bool, error)
	Save(ctx context.Context, sessionID string, state chat.State) error
	Delete(ctx context.Context, sessionID string) error
}

// MemorySessionStore keeps sessions in process memory. Every save restarts the entry's expiry.
type MemorySessionStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewMemorySessionStore creates a store whose entries expire after ttl and are purged every cleanup
func NewMemorySessionStore(ttl, cleanup time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		cache: cache.New(ttl, cleanup),
		ttl:   ttl,
	}
}

func (r *MemorySessionStore) Get(_ context.Context, sessionID string) (chat.State, bool, error) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(chat.State).Clone(), true, nil
	}
	return chat.State{}, false, nil
}

func (r *MemorySessionStore) Save(_ context.Context, sessionID string, state chat.State) error {
	r.cache.Set(sessionID, state.Clone(), cache.DefaultExpiration)
	return nil
}

func (r *MemorySessionStore) Delete(_ context.Context, sessionID string) error {
	r.cache.Delete(sessionID)
	return nil
}

// Count returns the number of live sessions
func (r *MemorySessionStore) Count() int {
	return r.cache.ItemCount()
}

// RedisSessionStore keeps sessions as JSON documents so several server instances can share them
type RedisSessionStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisClient parses a redis:// URL and checks the connection
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return client, nil
}

func NewRedisSessionStore(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (r *RedisSessionStore) key(sessionID string) string {
	return r.keyPrefix + sessionID
}

func (r *RedisSessionStore) Get(ctx context.Context, sessionID string) (chat.State, bool, error) {
	data, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return chat.State{}, false, nil
	}
	if err != nil {
		return chat.State{}, false, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	state, err := decodeState(data)
	if err != nil {
		return chat.State{}, false, fmt.Errorf("failed to decode session %s: %w", sessionID, err)
	}
	return state, true, nil
}

func (r *RedisSessionStore) Save(ctx context.Context, sessionID string, state chat.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", sessionID, err)
	}
	if err := r.client.Set(ctx, r.key(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session %s: %w", sessionID, err)
	}
	return nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	return nil
}

// decodeState restores a snapshot, filling the nil collections JSON leaves behind
func decodeState(data []byte) (chat.State, error) {
	var state chat.State
	if err := json.Unmarshal(data, &state); err != nil {
		return chat.State{}, err
	}
	if state.Messages == nil {
		state.Messages = []model.ChatMessage{}
	}
	if state.ConversationContext.AskedQuestionIDs == nil {
		state.ConversationContext.AskedQuestionIDs = []string{}
	}
	if state.ConversationContext.AllAnswers == nil {
		state.ConversationContext.AllAnswers = map[string]any{}
	}
	return state, nil
}
