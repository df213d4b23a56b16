package redis

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Unlock only when the token still matches, so an expired lease never
// releases a lock another process has since taken.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var errLockHeld = errors.New("lock held")

// Locker implements usecase.Locker with SET NX leases, so amendment creation
// is serialized per investment across processes.
type Locker struct {
	client  *redis.Client
	prefix  string
	lease   time.Duration
	maxWait time.Duration
	logger  zerolog.Logger
}

// LockerOption configures a Locker.
type LockerOption func(*Locker)

// WithLease sets how long a lock survives a crashed holder.
func WithLease(d time.Duration) LockerOption {
	return func(l *Locker) { l.lease = d }
}

// WithMaxWait bounds how long Lock polls before giving up.
func WithMaxWait(d time.Duration) LockerOption {
	return func(l *Locker) { l.maxWait = d }
}

// WithLockerLogger sets the logger used for release failures.
func WithLockerLogger(logger zerolog.Logger) LockerOption {
	return func(l *Locker) { l.logger = logger }
}

// NewLocker creates a new Locker.
func NewLocker(client *redis.Client, opts ...LockerOption) *Locker {
	l := &Locker{
		client:  client,
		prefix:  "lock:",
		lease:   30 * time.Second,
		maxWait: 10 * time.Second,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock blocks until the key is acquired, ctx is done, or maxWait elapses.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	fullKey := l.prefix + key
	token := ulid.Make().String()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Millisecond
	b.MaxInterval = 100 * time.Millisecond
	b.MaxElapsedTime = l.maxWait

	err := backoff.Retry(func() error {
		ok, err := l.client.SetNX(ctx, fullKey, token, l.lease).Result()
		if err != nil {
			return backoff.Permanent(err)
		}
		if !ok {
			return errLockHeld
		}
		return nil
	}, backoff.WithContext(b, ctx))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	var released bool
	return func() {
		if released {
			return
		}
		released = true
		// The caller's ctx may already be cancelled; release regardless.
		if err := releaseScript.Run(context.WithoutCancel(ctx), l.client, []string{fullKey}, token).Err(); err != nil {
			l.logger.Warn().Err(err).Str("key", key).Msg("failed to release lock")
		}
	}, nil
}
