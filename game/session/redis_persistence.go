package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/wricardo/lost-knight/game/service"
)

// farFuture scores index entries that never expire.
const farFuture = 4102444800 // 2100-01-01

// RedisPersistence implements SessionPersistence on Redis. Each session is a
// JSON string key and the index is a ZSET scored by expiry time.
type RedisPersistence struct {
	client  *backend.Client
	prefix  string
	ttl     time.Duration
	timeout time.Duration
}

// RedisOption configures a RedisPersistence.
type RedisOption func(*RedisPersistence)

// WithTTL sets the expiration for stored sessions.
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *RedisPersistence) {
		r.ttl = ttl
	}
}

// WithPrefix sets the key prefix for stored sessions.
func WithPrefix(prefix string) RedisOption {
	return func(r *RedisPersistence) {
		r.prefix = prefix
	}
}

// WithTimeout bounds every Redis round trip.
func WithTimeout(timeout time.Duration) RedisOption {
	return func(r *RedisPersistence) {
		r.timeout = timeout
	}
}

// NewRedisPersistence connects to the server at url, e.g. redis://localhost:6379/0.
func NewRedisPersistence(url string, opts ...RedisOption) (*RedisPersistence, error) {
	options, err := backend.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewRedisPersistenceFromClient(backend.NewClient(options), opts...), nil
}

// NewRedisPersistenceFromClient wraps an existing client.
func NewRedisPersistenceFromClient(client *backend.Client, opts ...RedisOption) *RedisPersistence {
	r := &RedisPersistence{
		client:  client,
		prefix:  "lostknight:session:",
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisPersistence) key(id string) string {
	return r.prefix + strings.ToLower(id)
}

func (r *RedisPersistence) indexKey() string {
	return r.prefix + "index"
}

func (r *RedisPersistence) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.timeout)
}

// Ping checks the connection.
func (r *RedisPersistence) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Save stores the session and refreshes its index entry.
func (r *RedisPersistence) Save(session *service.Session) error {
	data, err := marshalSession(session)
	if err != nil {
		return err
	}

	ctx, cancel := r.ctx()
	defer cancel()

	score := float64(time.Now().Add(r.ttl).Unix())
	if r.ttl == 0 {
		score = farFuture
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.key(session.ID), data, r.ttl)
	pipe.ZAdd(ctx, r.indexKey(), backend.Z{Score: score, Member: strings.ToLower(session.ID)})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves a session.
func (r *RedisPersistence) Load(id string) (*service.Session, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	val, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return unmarshalSession(val)
}

// Delete removes the session and its index entry.
func (r *RedisPersistence) Delete(id string) error {
	ctx, cancel := r.ctx()
	defer cancel()

	pipe := r.client.Pipeline()
	del := pipe.Del(ctx, r.key(id))
	pipe.ZRem(ctx, r.indexKey(), strings.ToLower(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	if del.Val() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll prunes expired index entries and returns the rest.
func (r *RedisPersistence) ListAll() ([]string, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	now := fmt.Sprintf("%d", time.Now().Unix())
	if err := r.client.ZRemRangeByScore(ctx, r.indexKey(), "-inf", now).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired sessions: %w", err)
	}

	ids, err := r.client.ZRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return ids, nil
}

// Exists reports whether the session key is present.
func (r *RedisPersistence) Exists(id string) bool {
	ctx, cancel := r.ctx()
	defer cancel()

	n, err := r.client.Exists(ctx, r.key(id)).Result()
	return err == nil && n > 0
}

// Close closes the redis client.
func (r *RedisPersistence) Close() error {
	return r.client.Close()
}
