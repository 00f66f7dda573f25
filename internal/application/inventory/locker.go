package inventory

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// keyedLocker exclusión mutua por producto. Las entradas se liberan cuando nadie las usa.
type keyedLocker struct {
	mu    sync.Mutex
	locks map[int64]*refSem
}

type refSem struct {
	sem  *semaphore.Weighted
	refs int
}

func newKeyedLocker() *keyedLocker {
	return &keyedLocker{locks: make(map[int64]*refSem)}
}

// Lock espera la clave hasta que ctx se cancele y devuelve la función que la libera.
func (k *keyedLocker) Lock(ctx context.Context, key int64) (unlock func(), err error) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refSem{sem: semaphore.NewWeighted(1)}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	if err := m.sem.Acquire(ctx, 1); err != nil {
		k.release(key, m)
		return nil, err
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			m.sem.Release(1)
			k.release(key, m)
		})
	}, nil
}

func (k *keyedLocker) release(key int64, m *refSem) {
	k.mu.Lock()
	m.refs--
	if m.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()
}

func (k *keyedLocker) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
