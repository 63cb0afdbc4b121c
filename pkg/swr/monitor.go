package swr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/sitekit/pkg/logger"
)

// DefaultProbeInterval is how often the monitor probes connectivity.
const DefaultProbeInterval = 10 * time.Second

// ErrMonitorStarted is returned by Start on a running monitor.
var ErrMonitorStarted = errors.New("swr: monitor already started")

// ProbeFunc reports whether the backend is reachable.
type ProbeFunc func(ctx context.Context) error

// MonitorOption configures the Monitor.
type MonitorOption func(*Monitor)

// WithProbeInterval sets the probe interval.
func WithProbeInterval(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithProbeTimeout bounds a single probe.
func WithProbeTimeout(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithMonitorLogger sets the logger.
func WithMonitorLogger(l *slog.Logger) MonitorOption {
	return func(m *Monitor) {
		if l != nil {
			m.logger = l
		}
	}
}

// Monitor tracks backend connectivity and revalidates the store when the
// backend becomes reachable again.
type Monitor struct {
	store    *Store
	probe    ProbeFunc
	logger   *slog.Logger
	cron     *cron.Cron
	interval time.Duration
	timeout  time.Duration

	mu     sync.Mutex
	stop   chan struct{}
	online atomic.Bool
}

// NewMonitor creates a monitor. It assumes the backend is online until a
// probe says otherwise.
func NewMonitor(store *Store, probe ProbeFunc, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		store:    store,
		probe:    probe,
		logger:   logger.NewNope(),
		interval: DefaultProbeInterval,
		timeout:  5 * time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.online.Store(true)
	return m
}

// Online reports the last observed connectivity.
func (m *Monitor) Online() bool {
	return m.online.Load()
}

// Check runs one probe. An offline to online transition triggers
// Store.Reconnected. It returns the observed connectivity.
func (m *Monitor) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.probe(ctx)
	online := err == nil
	was := m.online.Swap(online)

	switch {
	case was && !online:
		m.logger.WarnContext(ctx, "backend unreachable", slog.Any("error", err))
	case !was && online:
		n := m.store.Reconnected()
		m.logger.InfoContext(ctx, "backend reachable again", slog.Int("revalidated", n))
	}
	return online
}

// Start schedules probes until ctx is done or Stop is called.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cron != nil {
		return ErrMonitorStarted
	}

	c := cron.New()
	spec := fmt.Sprintf("@every %s", m.interval)
	if _, err := c.AddFunc(spec, func() { m.Check(ctx) }); err != nil {
		return fmt.Errorf("swr: invalid probe schedule %q: %w", spec, err)
	}
	c.Start()
	m.cron = c
	stop := make(chan struct{})
	m.stop = stop

	go func() {
		select {
		case <-ctx.Done():
			m.halt(stop)
		case <-stop:
		}
	}()
	return nil
}

// Stop halts scheduled probes and waits for a running probe to finish.
// A stopped monitor can be started again.
func (m *Monitor) Stop() {
	m.halt(nil)
}

// halt stops the run identified by stop, or the current run when stop is nil.
func (m *Monitor) halt(stop chan struct{}) {
	m.mu.Lock()
	if m.stop == nil || (stop != nil && m.stop != stop) {
		m.mu.Unlock()
		return
	}
	c := m.cron
	close(m.stop)
	m.cron = nil
	m.stop = nil
	m.mu.Unlock()

	<-c.Stop().Done()
}
