package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore tracks which session ids are still valid so logout and
// account deletion can revoke a signed cookie before it expires.
type SessionStore interface {
	Save(ctx context.Context, sessionID string, userID int64, ttl time.Duration) error
	Exists(ctx context.Context, sessionID string) (bool, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteUser(ctx context.Context, userID int64) error
}

type SessionRedisRepo struct {
	client *redis.Client
}

// RedisOptions turns a REDIS_URL into client options. A bare host:port is
// accepted, and password fills in when the URL carries none.
func RedisOptions(rawURL, password string) (*redis.Options, error) {
	if !strings.Contains(rawURL, "://") {
		rawURL = "redis://" + rawURL
	}
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opts.Password == "" {
		opts.Password = password
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	return opts, nil
}

// NewSessionRedisRepo connects to Redis and verifies the connection.
func NewSessionRedisRepo(redisURL, password string) (*SessionRedisRepo, error) {
	opts, err := RedisOptions(redisURL, password)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &SessionRedisRepo{client: rdb}, nil
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

func userSessionsKey(userID int64) string {
	return fmt.Sprintf("sessions:user:%d", userID)
}

// Save registers a session for ttl.
func (r *SessionRedisRepo) Save(ctx context.Context, sessionID string, userID int64, ttl time.Duration) error {
	if r == nil || r.client == nil {
		// No registry configured
		return nil
	}

	fields := map[string]any{
		"user_id":    userID,
		"created_at": time.Now().UTC().Format(time.RFC3339Nano),
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, sessionKey(sessionID), fields)
	pipe.Expire(ctx, sessionKey(sessionID), ttl)
	pipe.SAdd(ctx, userSessionsKey(userID), sessionID)
	pipe.Expire(ctx, userSessionsKey(userID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Exists reports whether the session is still registered. Without a registry
// every signed session is accepted.
func (r *SessionRedisRepo) Exists(ctx context.Context, sessionID string) (bool, error) {
	if r == nil || r.client == nil {
		return true, nil
	}
	n, err := r.client.Exists(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("check session: %w", err)
	}
	return n > 0, nil
}

func (r *SessionRedisRepo) Delete(ctx context.Context, sessionID string) error {
	if r == nil || r.client == nil {
		return nil
	}

	userID, err := r.client.HGet(ctx, sessionKey(sessionID), "user_id").Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("delete session: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKey(sessionID))
	if id, convErr := strconv.ParseInt(userID, 10, 64); convErr == nil {
		pipe.SRem(ctx, userSessionsKey(id), sessionID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteUser revokes every session of a user.
func (r *SessionRedisRepo) DeleteUser(ctx context.Context, userID int64) error {
	if r == nil || r.client == nil {
		return nil
	}

	ids, err := r.client.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("list user sessions: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, userSessionsKey(userID))

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (r *SessionRedisRepo) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}
