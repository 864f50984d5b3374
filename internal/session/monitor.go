// Package session provides the background check that detects server-side
// session invalidation (revocation, admin-forced logout) between user
// actions.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/opsboard/opsboard-go/internal/credentials"
	"github.com/opsboard/opsboard-go/internal/pipeline"
)

// DefaultInterval is the probe cadence when none is configured.
const DefaultInterval = 5 * time.Minute

// Monitor periodically probes the server with a lightweight "who am I"
// call while a credential is present. Authorization rejections clear the
// store; ambiguous failures (timeouts, 5xx) are ignored so a flaky
// connection never logs the user out.
type Monitor struct {
	logger   *slog.Logger
	client   *pipeline.Client
	store    *credentials.Store
	interval time.Duration

	mu     sync.Mutex
	ticker *time.Ticker
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMonitor constructs a Monitor. A non-positive interval falls back to
// DefaultInterval.
func NewMonitor(logger *slog.Logger, client *pipeline.Client, store *credentials.Store, interval time.Duration) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{logger: logger, client: client, store: store, interval: interval}
}

// Start arms the recurring probe. Calling Start while already armed cancels
// the previous timer first, so at most one poll cycle is ever active.
func (m *Monitor) Start(ctx context.Context) {
	m.Stop()

	m.mu.Lock()
	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.ticker = time.NewTicker(m.interval)
	ticker := m.ticker
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				m.probe(loopCtx)
			}
		}
	}()
}

// Stop disarms the timer. An in-flight probe runs to completion but no
// further probes fire. Safe to call when not started.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if m.ticker == nil {
		m.mu.Unlock()
		return
	}
	m.ticker.Stop()
	m.ticker = nil
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.mu.Unlock()

	m.wg.Wait()
}

// Running reports whether the probe timer is armed.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ticker != nil
}

func (m *Monitor) probe(ctx context.Context) {
	if m.store.Credential().AccessToken == "" {
		return
	}
	if _, err := m.client.Me(ctx); err != nil {
		if pipeline.IsAuthFailure(err) {
			// The pipeline has already exhausted its refresh attempt.
			m.logger.Info("session invalidated by server")
			m.store.Clear(ctx)
			return
		}
		m.logger.Debug("session probe failed, ignoring", slog.Any("error", err))
	}
}
