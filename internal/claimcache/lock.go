package claimcache

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/blake2b"
)

// Locker serializes work per key. The returned unlock function must be called
// exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// QueryKey derives the lock key of a normalized query.
func QueryKey(normalized string) string {
	sum := blake2b.Sum256([]byte(normalized))
	return "flowcheck:claim:" + hex.EncodeToString(sum[:16])
}

// LocalLocker is a keyed mutex for a single process.
type LocalLocker struct {
	locks map[string]*keyLock
	mu    sync.Mutex
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker creates an in-process locker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*keyLock)}
}

// Lock blocks until key is free or ctx is done.
func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, kl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-kl.ch
			l.release(key, kl)
		})
	}, nil
}

func (l *LocalLocker) release(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

// unlockScript deletes the key only while it still holds our token.
var unlockScript = redis.NewScript(1, `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker coordinates the miss path across processes with SET NX PX.
type RedisLocker struct {
	pool  *redis.Pool
	ttl   time.Duration
	retry time.Duration
}

// NewRedisLocker creates a locker backed by the Redis server at rawURL.
// ttl bounds how long a crashed holder can block others.
func NewRedisLocker(rawURL string, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	pool := &redis.Pool{
		MaxIdle:     4,
		IdleTimeout: 5 * time.Minute,
		DialContext: func(ctx context.Context) (redis.Conn, error) {
			return redis.DialURLContext(ctx, rawURL)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}
	return &RedisLocker{pool: pool, ttl: ttl, retry: 50 * time.Millisecond}
}

// Ping checks connectivity.
func (r *RedisLocker) Ping(ctx context.Context) error {
	conn, err := r.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("redis connect: %w", err)
	}
	defer conn.Close()
	_, err = conn.Do("PING")
	return err
}

// Close releases the connection pool.
func (r *RedisLocker) Close() error {
	return r.pool.Close()
}

// Lock polls until the key is acquired or ctx is done.
func (r *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()

	for {
		ok, err := r.tryLock(ctx, key, token)
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}

		timer := time.NewTimer(r.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			r.unlock(key, token)
		})
	}, nil
}

func (r *RedisLocker) tryLock(ctx context.Context, key, token string) (bool, error) {
	conn, err := r.pool.GetContext(ctx)
	if err != nil {
		return false, fmt.Errorf("redis connect: %w", err)
	}
	defer conn.Close()

	_, err = redis.String(conn.Do("SET", key, token, "NX", "PX", r.ttl.Milliseconds()))
	if errors.Is(err, redis.ErrNil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis lock %s: %w", key, err)
	}
	return true, nil
}

func (r *RedisLocker) unlock(key, token string) {
	conn := r.pool.Get()
	defer conn.Close()

	if _, err := unlockScript.Do(conn, key, token); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to release query lock")
	}
}
