// Package connectivity tracks whether a usable network path to the TLE API
// exists. Readers take a synchronous snapshot; the value is updated
// asynchronously by a background prober.
package connectivity

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mariavieira99/Satellites/internal/metrics"
)

// ErrAlreadyStarted is returned by Start while a previous registration is live.
var ErrAlreadyStarted = errors.New("connectivity monitor already started")

// Signal is the read side of connectivity state.
type Signal interface {
	Connected() bool
}

// Static is a fixed Signal, used by tests and offline tooling.
type Static bool

// Connected returns the fixed value.
func (s Static) Connected() bool { return bool(s) }

// Observation is one platform reading of the network path.
type Observation struct {
	Reachable bool // a network with internet capability answered
	Validated bool // the answer came from the real upstream
}

// Prober takes one observation of the network path.
type Prober interface {
	Probe(ctx context.Context) Observation
}

// Monitor holds the process's current belief about connectivity. It starts
// pessimistic (false) until the first observation.
type Monitor struct {
	connected atomic.Bool

	prober   Prober
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitor creates a stopped monitor.
func NewMonitor(prober Prober, interval time.Duration, logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	metrics.SetConnectivity(false)
	return &Monitor{
		prober:   prober,
		interval: interval,
		logger:   logger,
	}
}

// Connected returns the latest observed state without blocking.
func (m *Monitor) Connected() bool {
	return m.connected.Load()
}

// Available records that a network came up. Only a network with internet
// capability flips the state to connected.
func (m *Monitor) Available(hasInternet bool) {
	if hasInternet {
		m.set(true, "available")
	}
}

// Lost records that the network went away.
func (m *Monitor) Lost() {
	m.set(false, "lost")
}

// CapabilitiesChanged records a change in whether the network is validated.
func (m *Monitor) CapabilitiesChanged(validated bool) {
	m.set(validated, "capabilities_changed")
}

func (m *Monitor) set(v bool, reason string) {
	if old := m.connected.Swap(v); old != v {
		metrics.SetConnectivity(v)
		m.logger.Info("connectivity changed", "component", "connectivity", "connected", v, "reason", reason)
	}
}

// Start registers the monitor: it probes immediately and then every
// interval until ctx is done or Stop is called. Only one registration may be
// live at a time.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done

	go m.run(ctx, done)
	return nil
}

// Stop unregisters the monitor and waits for the probe loop to exit. The
// last observed state is kept.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (m *Monitor) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		m.observe(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// observe maps one observation onto the platform transitions.
func (m *Monitor) observe(ctx context.Context) {
	obs := m.prober.Probe(ctx)
	if ctx.Err() != nil {
		return
	}

	switch {
	case !obs.Reachable:
		m.Lost()
	case !obs.Validated:
		m.CapabilitiesChanged(false)
	case !m.Connected():
		m.Available(true)
	default:
		m.CapabilitiesChanged(true)
	}
}
