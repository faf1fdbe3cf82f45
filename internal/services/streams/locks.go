package streamsvc

import "sync"

// idLocks is a mutex per stream id. Entries are dropped once unused.
type idLocks struct {
	mu    sync.Mutex
	locks map[uint64]*idLock
}

type idLock struct {
	mu   sync.Mutex
	refs int
}

func newIDLocks() *idLocks { return &idLocks{locks: map[uint64]*idLock{}} }

// Lock acquires the mutex for id and returns its release func.
func (l *idLocks) Lock(id uint64) func() {
	l.mu.Lock()
	e, ok := l.locks[id]
	if !ok {
		e = &idLock{}
		l.locks[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *idLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
