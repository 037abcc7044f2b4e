package cache

import (
	"context"
	"sync"
	"time"

	"github.com/estate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

type lease struct {
	token     uuid.UUID
	expiresAt time.Time
}

// InMemoryLocker implements shared.Locker for a single process.
// Leases expire after their TTL so a crashed holder cannot block a key forever.
type InMemoryLocker struct {
	mu        sync.Mutex
	leases    map[string]lease
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryLocker creates a locker and starts its expiry sweeper
func NewInMemoryLocker() *InMemoryLocker {
	l := &InMemoryLocker{
		leases:   make(map[string]lease),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	l.wg.Add(1)
	go l.sweepLoop()
	return l
}

// Acquire takes key for ttl, or returns shared.ErrLocked while another lease is live
func (l *InMemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if current, held := l.leases[key]; held && now.Before(current.expiresAt) {
		return nil, shared.ErrLocked
	}

	token := uuid.New()
	l.leases[key] = lease{token: token, expiresAt: now.Add(ttl)}

	release := func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		// Only the holder that set the lease may clear it
		if current, held := l.leases[key]; held && current.token == token {
			delete(l.leases, key)
		}
		return nil
	}
	return release, nil
}

// Close stops the sweeper. Safe to call multiple times.
func (l *InMemoryLocker) Close() error {
	l.closeOnce.Do(func() {
		close(l.stopChan)
		l.wg.Wait()
	})
	return nil
}

// Held returns the number of live leases
func (l *InMemoryLocker) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	n := 0
	for _, current := range l.leases {
		if now.Before(current.expiresAt) {
			n++
		}
	}
	return n
}

func (l *InMemoryLocker) sweepLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *InMemoryLocker) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, current := range l.leases {
		if !now.Before(current.expiresAt) {
			delete(l.leases, key)
		}
	}
}

var _ shared.Locker = (*InMemoryLocker)(nil)
