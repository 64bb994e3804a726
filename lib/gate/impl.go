package gate

import (
	"sync"
	"time"

	"github.com/rcrowley/go-metrics"
)

// Default is the gate shared by every extension call in the process.
var Default = New("extension")

// Gate is a FIFO binary semaphore implementing IGate.
type Gate struct {
	mu      sync.Mutex
	held    bool
	waiters []chan struct{} // FIFO, head is admitted next

	acquiredAt time.Time
	waitTimer  metrics.Timer
	holdTimer  metrics.Timer
}

// New creates a gate. The name is used for the wait and hold timers
// registered in the default go-metrics registry ("gate.<name>.wait", "gate.<name>.hold").
func New(name string) *Gate {
	return &Gate{
		waitTimer: metrics.GetOrRegisterTimer("gate."+name+".wait", metrics.DefaultRegistry),
		holdTimer: metrics.GetOrRegisterTimer("gate."+name+".hold", metrics.DefaultRegistry),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see gate/interface.go)
// --------------------------------------------------------------------------

func (g *Gate) Acquire() {
	start := time.Now()

	g.mu.Lock()
	if !g.held {
		g.held = true
		g.acquiredAt = time.Now()
		g.mu.Unlock()
		g.waitTimer.UpdateSince(start)
		return
	}

	// Queue up. Release hands the gate over by closing our channel,
	// so held stays true across the hand-off.
	ch := make(chan struct{})
	g.waiters = append(g.waiters, ch)
	g.mu.Unlock()

	<-ch
	g.waitTimer.UpdateSince(start)
}

func (g *Gate) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.held {
		panic("gate: release of a gate that is not held")
	}
	g.holdTimer.UpdateSince(g.acquiredAt)
	g.acquiredAt = time.Now()

	if len(g.waiters) == 0 {
		g.held = false
		return
	}

	next := g.waiters[0]
	g.waiters[0] = nil
	g.waiters = g.waiters[1:]
	close(next)
}

func (g *Gate) Do(fn func() error) error {
	g.Acquire()
	defer g.Release()
	return fn()
}

// --------------------------------------------------------------------------
// Inspection (used by tests and diagnostics)
// --------------------------------------------------------------------------

// TryAcquire takes the gate only if it is free and nobody is queued.
func (g *Gate) TryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held {
		return false
	}
	g.held = true
	g.acquiredAt = time.Now()
	return true
}

// Held reports whether the gate is currently taken.
func (g *Gate) Held() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.held
}

// Waiting returns the number of queued callers.
func (g *Gate) Waiting() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.waiters)
}
