package search

import "sync"

// accountLocks serializes credit debits per account id within this process.
// The store has no compare-and-swap on the balance field, so cross-process
// races are out of reach; this closes the in-process window.
type accountLocks struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func (l *accountLocks) lock(accountID int) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[int]*sync.Mutex)
	}
	m, ok := l.locks[accountID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[accountID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
