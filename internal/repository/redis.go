package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"saas-billing/internal/client"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrIdempotencyPending is returned by Get while another request holds the key.
var ErrIdempotencyPending = errors.New("idempotency key is pending")

const idempotencyPending = "pending"

// IdempotencyRepository remembers the provider handle returned for a client key.
// Claim reserves a key before the provider is called; Put replaces the claim
// with the handle and Release drops a claim whose request failed.
type IdempotencyRepository interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (*client.OrderHandle, error)
	Put(ctx context.Context, key string, handle *client.OrderHandle, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

// NonceRepository stores short-lived sign-in nonces.
type NonceRepository interface {
	Put(ctx context.Context, nonce string, ttl time.Duration) error
}

type redisIdempotencyRepo struct {
	rdb *redis.Client
}

func NewIdempotencyRepository(rdb *redis.Client) IdempotencyRepository {
	return &redisIdempotencyRepo{rdb: rdb}
}

func (r *redisIdempotencyRepo) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.rdb.SetNX(ctx, "idem:"+key, idempotencyPending, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim idempotency key: %w", err)
	}
	return ok, nil
}

// Get returns nil, nil when the key is unknown.
func (r *redisIdempotencyRepo) Get(ctx context.Context, key string) (*client.OrderHandle, error) {
	raw, err := r.rdb.Get(ctx, "idem:"+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read idempotency key: %w", err)
	}
	if string(raw) == idempotencyPending {
		return nil, ErrIdempotencyPending
	}

	var handle client.OrderHandle
	if err := json.Unmarshal(raw, &handle); err != nil {
		return nil, fmt.Errorf("decode idempotency entry: %w", err)
	}
	return &handle, nil
}

func (r *redisIdempotencyRepo) Put(ctx context.Context, key string, handle *client.OrderHandle, ttl time.Duration) error {
	raw, err := json.Marshal(handle)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, "idem:"+key, raw, ttl).Err()
}

// Release deletes the key only while it still holds the pending claim.
func (r *redisIdempotencyRepo) Release(ctx context.Context, key string) error {
	return releaseScript.Run(ctx, r.rdb, []string{"idem:" + key}, idempotencyPending).Err()
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisNonceRepo struct {
	rdb *redis.Client
}

func NewNonceRepository(rdb *redis.Client) NonceRepository {
	return &redisNonceRepo{rdb: rdb}
}

func (r *redisNonceRepo) Put(ctx context.Context, nonce string, ttl time.Duration) error {
	return r.rdb.Set(ctx, "nonce:"+nonce, "1", ttl).Err()
}
