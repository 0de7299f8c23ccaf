package scheduler

import "sync"

// keyedMutex serializes check-then-act sequences per scheduling key. Entries
// are reference-counted and removed once the last holder releases, so the
// map does not grow with every (worker, date) pair the server ever saw.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*lockEntry)}
}

// Lock acquires the mutex for key, creating it on first use.
func (k *keyedMutex) Lock(key string) {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &lockEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
}

// Unlock releases the mutex for key and drops the entry when unused.
func (k *keyedMutex) Unlock(key string) {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if ok {
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
	}
	k.mu.Unlock()

	if ok {
		entry.mu.Unlock()
	}
}

// binDateKey is the scheduling key for bin-schedule conflict checks.
func binDateKey(binID, date string) string {
	return "bin|" + binID + "|" + date
}

// workerDateKey is the scheduling key for worker assignment and route mutation.
func workerDateKey(workerID, date string) string {
	return "worker|" + workerID + "|" + date
}
