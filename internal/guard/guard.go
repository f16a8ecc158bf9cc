package guard

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"

	"mailcraft/pkg/domain"
)

// KEYS[1] lease key, KEYS[2] token sequence; ARGV[1] lease ttl in ms.
var acquireScript = redis.NewScript(`
local token = redis.call("INCR", KEYS[2])
if redis.call("SET", KEYS[1], token, "NX", "PX", ARGV[1]) then
  return token
end
return 0
`)

// KEYS[1] lease key; ARGV[1] owning token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

var (
	// ErrInFlight means the session already has a generation running.
	ErrInFlight = errors.New("a generation is already in progress")
	// ErrDraftUnchanged means the same draft failed last time and has not been edited.
	ErrDraftUnchanged = errors.New("edit your draft before trying again")
)

// Config configures a Guard.
type Config struct {
	Addr     string
	Password string
	Prefix   string
	// LeaseTTL bounds how long an abandoned in-flight lease blocks a session.
	LeaseTTL time.Duration
	// GateTTL bounds how long a failed draft stays blocked.
	GateTTL time.Duration
}

// Guard serializes generations per session and remembers the last failed
// draft so it is not resubmitted unchanged. Both are Redis-backed.
// Redis failures are returned to the caller, which fails closed.
type Guard struct {
	client   *redis.Client
	prefix   string
	leaseTTL time.Duration
	gateTTL  time.Duration
}

// Lease is held by the request that owns a session's in-flight slot.
type Lease struct {
	key   string
	Token int64
}

// New creates a Redis-backed guard.
func New(cfg Config) (*Guard, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("guard redis addr is required")
	}
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = "mailcraft:writer"
	}
	leaseTTL := cfg.LeaseTTL
	if leaseTTL <= 0 {
		leaseTTL = 2 * time.Minute
	}
	gateTTL := cfg.GateTTL
	if gateTTL <= 0 {
		gateTTL = 30 * time.Minute
	}
	return &Guard{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.Password,
		}),
		prefix:   prefix,
		leaseTTL: leaseTTL,
		gateTTL:  gateTTL,
	}, nil
}

// Acquire claims the session's in-flight slot. It returns ErrInFlight when
// another request holds it.
func (g *Guard) Acquire(ctx context.Context, session string) (Lease, error) {
	key := g.key("inflight", session)
	ttlMs := g.leaseTTL.Milliseconds()
	token, err := acquireScript.Run(ctx, g.client, []string{key, g.prefix + ":seq"}, ttlMs).Int64()
	if err != nil {
		return Lease{}, fmt.Errorf("acquire lease: %w", err)
	}
	if token == 0 {
		return Lease{}, ErrInFlight
	}
	return Lease{key: key, Token: token}, nil
}

// Release frees the slot if lease still owns it.
func (g *Guard) Release(ctx context.Context, lease Lease) error {
	if lease.key == "" {
		return nil
	}
	if err := releaseScript.Run(ctx, g.client, []string{lease.key}, strconv.FormatInt(lease.Token, 10)).Err(); err != nil {
		return fmt.Errorf("release lease: %w", err)
	}
	return nil
}

// Check returns ErrDraftUnchanged when draft is the session's last failed draft.
func (g *Guard) Check(ctx context.Context, session string, draft domain.Draft) error {
	last, err := g.client.Get(ctx, g.key("failed", session)).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load failed draft: %w", err)
	}
	if last == Fingerprint(draft) {
		return ErrDraftUnchanged
	}
	return nil
}

// Record stores the outcome of a generation for the session's failure gate.
func (g *Guard) Record(ctx context.Context, session string, draft domain.Draft, outcome domain.Outcome) error {
	key := g.key("failed", session)
	if !outcome.Failed() {
		if err := g.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("clear failed draft: %w", err)
		}
		return nil
	}
	if err := g.client.Set(ctx, key, Fingerprint(draft), g.gateTTL).Err(); err != nil {
		return fmt.Errorf("store failed draft: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (g *Guard) Ping(ctx context.Context) error {
	return g.client.Ping(ctx).Err()
}

// Close releases the Redis connection pool.
func (g *Guard) Close() error {
	return g.client.Close()
}

func (g *Guard) key(kind, session string) string {
	session = strings.TrimSpace(session)
	if session == "" {
		session = "unknown"
	}
	return fmt.Sprintf("%s:%s:%s", g.prefix, kind, session)
}

// Fingerprint hashes every field that changes the generated prompt.
func Fingerprint(d domain.Draft) string {
	h, _ := blake2b.New256(nil)
	for _, field := range []string{d.Thoughts, string(d.Tone), d.Context, d.Locale} {
		h.Write([]byte(strconv.Itoa(len(field))))
		h.Write([]byte{':'})
		h.Write([]byte(field))
	}
	return hex.EncodeToString(h.Sum(nil))
}
