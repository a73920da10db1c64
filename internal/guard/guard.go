// Package guard hands out per-action lock tokens so the same action cannot
// run twice at once (a double-clicked submit, a repeated upvote).
package guard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"barangay/pkg/types"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const sharedKeyPrefix = "barangay:inflight:"

// releaseScript deletes the shared token only if this holder still owns it.
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

type Guard struct {
	mu   sync.Mutex
	held map[string]struct{}

	shared *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

func New() *Guard {
	return &Guard{held: make(map[string]struct{})}
}

// Share also records tokens in Redis so that several portal processes
// refuse the same action. Tokens expire after ttl in case a holder dies.
// When Redis cannot be reached the guard keeps working locally.
func (g *Guard) Share(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *Guard {
	g.shared = client
	g.ttl = ttl
	g.logger = logger
	return g
}

// Acquire takes the token for key. It fails with types.ErrInFlight while
// another holder has not released it. The returned release func is safe to
// call more than once.
func (g *Guard) Acquire(ctx context.Context, key string) (release func(), err error) {
	if err := g.acquireLocal(key); err != nil {
		return nil, err
	}

	token, err := g.acquireShared(ctx, key)
	if err != nil {
		g.releaseLocal(key)
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.releaseShared(key, token)
			g.releaseLocal(key)
		})
	}, nil
}

func (g *Guard) acquireLocal(key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.held[key]; busy {
		return fmt.Errorf("%w: %s", types.ErrInFlight, key)
	}
	g.held[key] = struct{}{}
	return nil
}

func (g *Guard) releaseLocal(key string) {
	g.mu.Lock()
	delete(g.held, key)
	g.mu.Unlock()
}

func (g *Guard) acquireShared(ctx context.Context, key string) (string, error) {
	if g.shared == nil {
		return "", nil
	}

	token := uuid.NewString()
	ok, err := g.shared.SetNX(ctx, sharedKeyPrefix+key, token, g.ttl).Result()
	if err != nil {
		g.logger.WithError(err).WithField("key", key).Warn("shared guard unavailable, using local token only")
		return "", nil
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", types.ErrInFlight, key)
	}

	return token, nil
}

func (g *Guard) releaseShared(key, token string) {
	if g.shared == nil || token == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, g.shared, []string{sharedKeyPrefix + key}, token).Err(); err != nil {
		g.logger.WithError(err).WithField("key", key).Warn("failed to release shared guard token")
	}
}

// Held reports whether key is currently taken by this process.
func (g *Guard) Held(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.held[key]
	return ok
}

// Key joins an action name and its subjects into a token key.
func Key(action string, subjects ...string) string {
	return strings.Join(append([]string{action}, subjects...), ":")
}
