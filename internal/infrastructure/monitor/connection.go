package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pinger is any collaborator whose reachability the monitor tracks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CredstorePinger matches the credential store's context-free ping.
type CredstorePinger interface {
	Ping() error
}

// Monitor periodically probes the remote account API and the local
// credential store so the page chrome can show an offline banner
// instead of letting every form submission fail cold.
type Monitor struct {
	api   Pinger
	creds CredstorePinger

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	logger   *zap.Logger
}

func New(api Pinger, creds CredstorePinger, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		api:      api,
		creds:    creds,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	close(m.stopCh)
}

// Online reports whether the remote API answered the last probe.
func (m *Monitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.API
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.refresh()
	for {
		select {
		case <-ticker.C:
			m.refresh()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) refresh() {
	status := Status{
		API:       m.checkAPI(),
		Credstore: m.checkCredstore(),
		LastCheck: time.Now(),
	}

	m.mu.Lock()
	wasOnline := m.status.API
	m.status = status
	m.mu.Unlock()

	if wasOnline && !status.API {
		m.logger.Warn("account API unreachable")
	}
}

func (m *Monitor) checkAPI() bool {
	if m.api == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return m.api.Ping(ctx) == nil
}

func (m *Monitor) checkCredstore() bool {
	if m.creds == nil {
		return false
	}
	if err := m.creds.Ping(); err != nil {
		m.logger.Warn("credential store check failed", zap.Error(err))
		return false
	}
	return true
}
