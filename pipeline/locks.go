package pipeline

import "sync"

// symbolLocks hands out one mutex per symbol. Entries are never removed; the
// symbol universe is small and fixed by configuration.
type symbolLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSymbolLocks() *symbolLocks {
	return &symbolLocks{locks: make(map[string]*sync.Mutex)}
}

// lock blocks until symbol is free and returns the matching unlock func.
func (l *symbolLocks) lock(symbol string) func() {
	l.mu.Lock()
	m, ok := l.locks[symbol]
	if !ok {
		m = &sync.Mutex{}
		l.locks[symbol] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
