package suggest

import (
	"context"
	"fmt"
	"sync"
)

// Gate bounds the number of generations in flight. Waiters are admitted
// in arrival order.
type Gate struct {
	mu      sync.Mutex
	limit   int
	active  int
	waiters []chan struct{}
}

// NewGate returns a gate admitting up to limit callers at once. A limit
// below one is treated as one.
func NewGate(limit int) *Gate {
	if limit < 1 {
		limit = 1
	}
	return &Gate{limit: limit}
}

// Enter blocks until the caller may proceed or ctx is done. Every nil
// return must be paired with a call to Leave.
func (g *Gate) Enter(ctx context.Context) error {
	g.mu.Lock()
	if g.active < g.limit {
		g.active++
		g.mu.Unlock()
		return nil
	}
	ch := make(chan struct{}, 1)
	g.waiters = append(g.waiters, ch)
	g.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		g.mu.Lock()
		queued := false
		for i, w := range g.waiters {
			if w == ch {
				g.waiters = append(g.waiters[:i], g.waiters[i+1:]...)
				queued = true
				break
			}
		}
		g.mu.Unlock()
		if !queued {
			// Leave handed us the slot while we were giving up.
			<-ch
			g.Leave()
		}
		return fmt.Errorf("gate: %w", ctx.Err())
	}
}

// Leave releases a slot, handing it straight to the oldest waiter if
// there is one.
func (g *Gate) Leave() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.waiters) > 0 {
		next := g.waiters[0]
		g.waiters = g.waiters[1:]
		next <- struct{}{}
		return
	}
	if g.active > 0 {
		g.active--
	}
}

// InFlight returns the number of callers currently admitted.
func (g *Gate) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

// Waiting returns the number of queued callers.
func (g *Gate) Waiting() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.waiters)
}
