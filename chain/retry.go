package chain

import (
	"context"
	"errors"
	"time"

	"github.com/jpillora/backoff"
	"go.uber.org/zap"
)

// RetryStore wraps a Store with a bounded per-attempt timeout and a limited
// number of retries with backoff on transient failures. Not-found results
// are returned immediately, retrying those would just burn time
type RetryStore struct {
	inner    Store
	attempts int
	timeout  time.Duration
}

func WithRetry(inner Store, attempts int, timeout time.Duration) *RetryStore {
	if attempts < 1 {
		attempts = 1
	}

	return &RetryStore{
		inner:    inner,
		attempts: attempts,
		timeout:  timeout,
	}
}

func (r *RetryStore) Put(ctx context.Context, data []byte) (string, error) {
	var cid string

	err := r.do(ctx, "put", func(ctx context.Context) error {
		var err error
		cid, err = r.inner.Put(ctx, data)
		return err
	})

	return cid, err
}

func (r *RetryStore) Get(ctx context.Context, cid string) ([]byte, error) {
	var data []byte

	err := r.do(ctx, "get", func(ctx context.Context) error {
		var err error
		data, err = r.inner.Get(ctx, cid)
		return err
	})

	return data, err
}

func (r *RetryStore) Status(ctx context.Context) (*Status, error) {
	return r.inner.Status(ctx)
}

func (r *RetryStore) do(ctx context.Context, op string, fn func(context.Context) error) error {
	b := &backoff.Backoff{
		Min:    100 * time.Millisecond,
		Max:    2 * time.Second,
		Jitter: true,
	}

	var err error
	for i := 0; i < r.attempts; i++ {
		attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
		err = fn(attemptCtx)
		cancel()

		if err == nil || errors.Is(err, ErrNotFound) {
			return err
		}

		if ctx.Err() != nil {
			return err
		}

		if i+1 < r.attempts {
			d := b.Duration()
			zap.L().Warn("Chain operation failed, retrying",
				zap.String("op", op),
				zap.Duration("backoff", d),
				zap.Error(err))

			select {
			case <-time.After(d):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return err
}
