package monitor

import (
	"fmt"
	"sync"
	"time"

	"outlook-email-extractor/internal/logging"
	"outlook-email-extractor/internal/models"
)

// Signal is a kind of view change reported by a Notifier
type Signal int

const (
	SignalMutation Signal = iota
	SignalClick
)

// String returns the log label of the signal
func (s Signal) String() string {
	switch s {
	case SignalMutation:
		return "mutation"
	case SignalClick:
		return "click"
	default:
		return "unknown"
	}
}

// Notifier delivers view change signals until the returned unsubscribe func is called
type Notifier interface {
	Subscribe(handler func(Signal)) (unsubscribe func(), err error)
}

// Monitor schedules a capture attempt after each view change. Attempts are not coalesced:
// the capture pipeline is idempotent, so extra attempts only cost time.
type Monitor struct {
	notifier Notifier
	attempt  func()
	delays   models.MonitorConfig

	mu          sync.Mutex
	active      bool
	unsubscribe func()
}

// New creates an inactive Monitor
func New(notifier Notifier, attempt func(), delays models.MonitorConfig) *Monitor {
	return &Monitor{
		notifier: notifier,
		attempt:  attempt,
		delays:   delays,
	}
}

// Start subscribes to view changes and schedules a first attempt once the view had time to
// render. Starting an active monitor does nothing.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active {
		return nil
	}

	unsubscribe, err := m.notifier.Subscribe(m.handle)
	if err != nil {
		return fmt.Errorf("subscribe to view changes: %w", err)
	}
	m.unsubscribe = unsubscribe
	m.active = true

	time.AfterFunc(m.delays.InitialDelay, m.attempt)

	logging.Log.Info("Email monitoring started")
	return nil
}

// Stop unsubscribes from view changes. Attempts already scheduled may still run once.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.active {
		return
	}

	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	m.active = false

	logging.Log.Info("Monitoring stopped")
}

// Active reports whether the monitor is subscribed
func (m *Monitor) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

func (m *Monitor) handle(signal Signal) {
	m.mu.Lock()
	active := m.active
	m.mu.Unlock()

	if !active {
		return
	}

	delay := m.delays.MutationDelay
	if signal == SignalClick {
		delay = m.delays.ClickDelay
	}

	logging.Log.WithField("signal", signal.String()).Debug("View changed, capture scheduled")
	time.AfterFunc(delay, m.attempt)
}
