package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"food-delivery/config"
	"food-delivery/models"
	"food-delivery/services"

	"github.com/redis/go-redis/v9"
)

func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// RedisCarts keeps each cart as one JSON value under cart:<customer id>.
type RedisCarts struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ services.CartStore = (*RedisCarts)(nil)

// NewRedisCarts stores carts with ttl; zero keeps them forever.
func NewRedisCarts(rdb *redis.Client, ttl time.Duration) *RedisCarts {
	return &RedisCarts{rdb: rdb, ttl: ttl}
}

func cartKey(customerID int64) string {
	return "cart:" + strconv.FormatInt(customerID, 10)
}

func (s *RedisCarts) GetCart(ctx context.Context, customerID int64) (*models.Cart, error) {
	raw, err := s.rdb.Get(ctx, cartKey(customerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.NewCart(customerID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart: %w", err)
	}
	return decodeCart(customerID, raw)
}

func (s *RedisCarts) SaveCart(ctx context.Context, cart *models.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := s.rdb.Set(ctx, cartKey(cart.CustomerID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

// cartLockTTL bounds how long a crashed holder can block a cart.
const cartLockTTL = 10 * time.Second

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// lock takes cart:<id>:lock with a random token; the returned func releases
// it only while the token still matches.
func (s *RedisCarts) lock(ctx context.Context, customerID int64) (func(), error) {
	key := cartKey(customerID) + ":lock"
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	wait := 5 * time.Millisecond
	for {
		ok, err := s.rdb.SetNX(ctx, key, token, cartLockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock cart: %w", err)
		}
		if ok {
			return func() {
				_ = unlockScript.Run(context.WithoutCancel(ctx), s.rdb, []string{key}, token).Err()
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		if wait < 100*time.Millisecond {
			wait *= 2
		}
	}
}

// UpdateCart holds the cart lock across the read-modify-write, so fn runs at
// most once and may have side effects.
func (s *RedisCarts) UpdateCart(ctx context.Context, customerID int64, fn func(*models.Cart) error) (*models.Cart, error) {
	unlock, err := s.lock(ctx, customerID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	c, err := s.GetCart(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.SaveCart(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCart empties the cart but keeps its entry counter.
func (s *RedisCarts) DeleteCart(ctx context.Context, customerID int64) error {
	_, err := s.UpdateCart(ctx, customerID, func(c *models.Cart) error {
		c.Clear()
		return nil
	})
	return err
}

// Sessions map bearer tokens to accounts.
type Sessions interface {
	Create(ctx context.Context, a *models.Account) (string, error)
	Get(ctx context.Context, token string) (*models.Account, error)
	Delete(ctx context.Context, token string) error
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

type RedisSessions struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessions(rdb *redis.Client, ttl time.Duration) *RedisSessions {
	return &RedisSessions{rdb: rdb, ttl: ttl}
}

func sessionKey(token string) string { return "session:" + token }

func (s *RedisSessions) Create(ctx context.Context, a *models.Account) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(token), raw, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("redis set session: %w", err)
	}
	return token, nil
}

// Get returns models.ErrNotFound for unknown or expired tokens.
func (s *RedisSessions) Get(ctx context.Context, token string) (*models.Account, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var a models.Account
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &a, nil
}

func (s *RedisSessions) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, sessionKey(token)).Err()
}

// MemorySessions is the in-process Sessions used without Redis.
type MemorySessions struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memSession
	now      func() time.Time
}

type memSession struct {
	account   models.Account
	expiresAt time.Time
}

func NewMemorySessions(ttl time.Duration) *MemorySessions {
	return &MemorySessions{ttl: ttl, sessions: make(map[string]memSession), now: time.Now}
}

func (s *MemorySessions) Create(_ context.Context, a *models.Account) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var exp time.Time
	if s.ttl > 0 {
		exp = s.now().Add(s.ttl)
	}
	s.sessions[token] = memSession{account: *a, expiresAt: exp}
	return token, nil
}

func (s *MemorySessions) Get(_ context.Context, token string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil, models.ErrNotFound
	}
	if !sess.expiresAt.IsZero() && !s.now().Before(sess.expiresAt) {
		delete(s.sessions, token)
		return nil, models.ErrNotFound
	}
	a := sess.account
	return &a, nil
}

func (s *MemorySessions) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}
