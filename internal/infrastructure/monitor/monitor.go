package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pinger reports whether the backing MongoDB deployment answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Readiness reports whether a store finished its index bootstrap successfully.
type Readiness interface {
	Ready() bool
}

type Monitor struct {
	mongo Pinger
	users Readiness
	roles Readiness

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(mongo Pinger, users, roles Readiness, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		mongo:    mongo,
		users:    users,
		roles:    roles,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

// Stop may be called more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Monitor) IsOnline() bool {
	return m.GetStatus().Healthy()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh(context.Background())
	for {
		select {
		case <-ticker.C:
			m.Refresh(context.Background())
		case <-m.stopCh:
			return
		}
	}
}

// Refresh probes every dependency once and stores the result.
func (m *Monitor) Refresh(ctx context.Context) Status {
	status := Status{
		MongoDB:   m.checkMongo(ctx),
		UserStore: m.users != nil && m.users.Ready(),
		RoleStore: m.roles != nil && m.roles.Ready(),
		LastCheck: time.Now().UTC(),
	}

	m.mu.Lock()
	prev := m.status
	m.status = status
	m.mu.Unlock()

	if !prev.LastCheck.IsZero() && prev.Healthy() != status.Healthy() {
		m.logger.Info("health changed", zap.Bool("healthy", status.Healthy()))
	}
	return status
}

func (m *Monitor) checkMongo(ctx context.Context) bool {
	if m.mongo == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := m.mongo.Ping(ctx); err != nil {
		m.logger.Warn("mongodb ping failed", zap.Error(err))
		return false
	}
	return true
}
