package mode

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

// Mode is the global assistance mode signal.
type Mode string

const (
	HITL      Mode = "hitl"      // suggestions generated, agent approval required
	Autopilot Mode = "autopilot" // answers sent automatically
	Off       Mode = "off"       // no generation at all
)

func Parse(s string) (Mode, error) {
	switch Mode(s) {
	case HITL, Autopilot, Off:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// Store holds the current global mode. Reads happen on every suggestion
// delivery check, so implementations must be cheap and never fail the caller.
type Store interface {
	Set(ctx context.Context, m Mode) error
	Get(ctx context.Context) Mode
}

// --- In-memory implementation (single instance deployments, tests) ---

type MemoryStore struct {
	v atomic.Value
}

func NewMemoryStore(initial Mode) *MemoryStore {
	s := &MemoryStore{}
	s.v.Store(initial)
	return s
}

func (s *MemoryStore) Set(_ context.Context, m Mode) error {
	s.v.Store(m)
	return nil
}

func (s *MemoryStore) Get(_ context.Context) Mode {
	return s.v.Load().(Mode)
}

// --- Redis implementation (shared across instances) ---

const redisModeKey = "assist:mode"

type RedisStore struct {
	client   *redis.Client
	fallback Mode
	logger   *log.Logger
}

func NewRedisStore(client *redis.Client, fallback Mode, logger *log.Logger) *RedisStore {
	return &RedisStore{
		client:   client,
		fallback: fallback,
		logger:   logger,
	}
}

func (s *RedisStore) Set(ctx context.Context, m Mode) error {
	return s.client.Set(ctx, redisModeKey, string(m), 0).Err()
}

// Get returns the stored mode, or the configured fallback when the key is
// missing or Redis is unreachable. A mode read must never surface an error
// to the polling path.
func (s *RedisStore) Get(ctx context.Context) Mode {
	val, err := s.client.Get(ctx, redisModeKey).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Printf("[MODE] Redis read failed, using fallback %q: %v", s.fallback, err)
		}
		return s.fallback
	}
	m, err := Parse(val)
	if err != nil {
		s.logger.Printf("[MODE] Invalid stored mode %q, using fallback %q", val, s.fallback)
		return s.fallback
	}
	return m
}
