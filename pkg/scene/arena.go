package scene

import "sync"

// Releaser is anything holding a buffer that must be freed explicitly.
type Releaser interface {
	Release()
}

// Arena owns every buffer allocated while building one graph and frees
// them together. Release frees each owned buffer exactly once.
type Arena struct {
	mu       sync.Mutex
	items    []Releaser
	released bool
}

// Own registers r with the arena. Owning after release frees r at once,
// so a late allocation can never leak.
func (a *Arena) Own(r Releaser) {
	a.mu.Lock()
	if a.released {
		a.mu.Unlock()
		r.Release()
		return
	}
	a.items = append(a.items, r)
	a.mu.Unlock()
}

// Len returns the number of buffers currently owned.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.items)
}

// Release frees all owned buffers and returns how many were freed.
// Later calls return 0.
func (a *Arena) Release() int {
	a.mu.Lock()
	if a.released {
		a.mu.Unlock()
		return 0
	}
	a.released = true
	items := a.items
	a.items = nil
	a.mu.Unlock()

	for _, r := range items {
		r.Release()
	}
	return len(items)
}

// Released reports whether Release has run.
func (a *Arena) Released() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.released
}
