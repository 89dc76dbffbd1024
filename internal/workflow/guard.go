package workflow

import "sync"

// SendGuard refuses a second send for the same key while the first is
// still running. It is shared by every request of the server.
type SendGuard struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewSendGuard creates an empty guard.
func NewSendGuard() *SendGuard {
	return &SendGuard{inflight: make(map[string]struct{})}
}

// TryAcquire claims key. It returns a release func and true, or nil and
// false if key is already held.
func (g *SendGuard) TryAcquire(key string) (func(), bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inflight[key]; busy {
		return nil, false
	}
	g.inflight[key] = struct{}{}
	return func() {
		g.mu.Lock()
		delete(g.inflight, key)
		g.mu.Unlock()
	}, true
}
