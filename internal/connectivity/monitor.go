// Package connectivity turns periodic backend probes into became-reachable
// and became-unreachable signals.
package connectivity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hissab/internal/log"
	"hissab/internal/remote"
)

// MonitorConfig holds configuration for the probe loop
type MonitorConfig struct {
	// Interval between two probes (default: 30s)
	Interval time.Duration

	// ProbeTimeout bounds a single probe (default: 5s)
	ProbeTimeout time.Duration

	// OnReachable runs when a probe succeeds after a failed one, and on the
	// first probe if it succeeds
	OnReachable func(ctx context.Context)

	// OnUnreachable runs when a probe fails after a successful one, and on
	// the first probe if it fails
	OnUnreachable func(ctx context.Context)
}

// DefaultMonitorConfig returns sensible defaults
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Interval:     30 * time.Second,
		ProbeTimeout: 5 * time.Second,
	}
}

// Monitor probes a Pinger on a ticker and reports transitions.
type Monitor struct {
	pinger remote.Pinger
	config MonitorConfig
	log    *log.Logger

	// Lifecycle management
	mu      sync.Mutex
	running bool
	known   bool
	online  bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewMonitor(pinger remote.Pinger, config MonitorConfig) *Monitor {
	def := DefaultMonitorConfig()
	if config.Interval <= 0 {
		config.Interval = def.Interval
	}
	if config.ProbeTimeout <= 0 {
		config.ProbeTimeout = def.ProbeTimeout
	}
	return &Monitor{
		pinger: pinger,
		config: config,
		log:    log.ForComponent(log.ComponentConnectivity),
	}
}

// Start begins the probe loop. Returns an error if already running.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("connectivity monitor is already running")
	}
	m.running = true
	m.known = false
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	m.mu.Unlock()

	go m.runLoop(ctx)

	m.log.InfoContext(ctx, "Connectivity monitor started",
		"interval", m.config.Interval)

	return nil
}

// Stop stops the loop and waits for the probe in progress, if any.
func (m *Monitor) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	close(m.stopCh)

	select {
	case <-m.doneCh:
		m.log.InfoContext(ctx, "Connectivity monitor stopped")
	case <-ctx.Done():
		m.log.WarnContext(ctx, "Connectivity monitor stop timed out")
		return ctx.Err()
	}

	m.mu.Lock()
	m.running = false
	m.mu.Unlock()

	return nil
}

// Online reports the result of the last probe. It is false before the first.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.known && m.online
}

func (m *Monitor) runLoop(ctx context.Context) {
	defer close(m.doneCh)

	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	// Probe immediately on startup
	m.Probe(ctx)

	for {
		select {
		case <-m.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Probe(ctx)
		}
	}
}

// Probe pings the backend once and fires the callback matching a change of
// reachability. It returns the probe result.
func (m *Monitor) Probe(ctx context.Context) bool {
	pctx, cancel := context.WithTimeout(ctx, m.config.ProbeTimeout)
	err := m.pinger.Ping(pctx)
	cancel()
	online := err == nil

	m.mu.Lock()
	changed := !m.known || m.online != online
	m.known = true
	m.online = online
	m.mu.Unlock()

	if !changed {
		return online
	}

	if online {
		m.log.InfoContext(ctx, "Backend reachable")
		if m.config.OnReachable != nil {
			m.config.OnReachable(ctx)
		}
	} else {
		m.log.WarnContext(ctx, "Backend unreachable", log.FieldError, err)
		if m.config.OnUnreachable != nil {
			m.config.OnUnreachable(ctx)
		}
	}
	return online
}
