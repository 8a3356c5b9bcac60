package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrLocked is returned when the lock is already held by another run.
var ErrLocked = errors.New("lock is held")

// Release gives a lock back. It is safe to call once.
type Release func(ctx context.Context) error

// Locker hands out exclusive, non-blocking locks by key.
type Locker interface {
	// Acquire takes the lock for key or fails with ErrLocked without waiting.
	Acquire(ctx context.Context, key string) (Release, error)
}

// LocalLocker serializes runs inside a single process.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocal creates an in-process locker.
func NewLocal() *LocalLocker {
	return &LocalLocker{held: make(map[string]struct{})}
}

// Acquire implements Locker.
func (l *LocalLocker) Acquire(_ context.Context, key string) (Release, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[key]; ok {
		return nil, ErrLocked
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
		return nil
	}, nil
}

// Chain acquires every locker in order. If one fails, the ones already taken are released.
type Chain []Locker

// Acquire implements Locker.
func (c Chain) Acquire(ctx context.Context, key string) (Release, error) {
	releases := make([]Release, 0, len(c))
	releaseAll := func(ctx context.Context) error {
		var errs []error
		for i := len(releases) - 1; i >= 0; i-- {
			if err := releases[i](ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	for _, l := range c {
		if l == nil {
			continue
		}
		rel, err := l.Acquire(ctx, key)
		if err != nil {
			if relErr := releaseAll(ctx); relErr != nil {
				return nil, fmt.Errorf("%w (release: %v)", err, relErr)
			}
			return nil, err
		}
		releases = append(releases, rel)
	}
	return releaseAll, nil
}
