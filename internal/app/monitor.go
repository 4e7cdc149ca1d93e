package app

import (
	"context"
	"sync"
	"time"

	"github.com/netbatch/netbatchd/internal/domain"
	"github.com/netbatch/netbatchd/internal/ports"
)

// DefaultMonitorPollInterval is how often the Monitor re-reads
// PlatformSignals when the host has no push-based notification hook.
const DefaultMonitorPollInterval = 10 * time.Second

// Monitor tracks domain.DeviceState and publishes changes to subscribers.
// Unlike the teacher's single-callback EventEmitter, each Subscribe call
// hands back a dedicated channel plus a cancel function; the channel stays
// registered, and keeps receiving broadcasts, until that cancel function is
// called.
type Monitor struct {
	mu      sync.RWMutex
	state   domain.DeviceState
	signals ports.PlatformSignals
	logger  ports.Logger

	subMu sync.Mutex
	subs  map[chan domain.DeviceState]struct{}

	pollInterval time.Duration
}

// NewMonitor creates a Monitor backed by signals. The zero-value DeviceState
// (never connected, never charging) is the initial state until the first
// poll completes.
func NewMonitor(signals ports.PlatformSignals, logger ports.Logger) *Monitor {
	return &Monitor{
		signals:      signals,
		logger:       logger,
		subs:         make(map[chan domain.DeviceState]struct{}),
		pollInterval: DefaultMonitorPollInterval,
	}
}

// SetPollInterval overrides DefaultMonitorPollInterval; must be called
// before Run.
func (m *Monitor) SetPollInterval(d time.Duration) {
	if d > 0 {
		m.pollInterval = d
	}
}

// State returns the current snapshot. Safe to call from any goroutine.
func (m *Monitor) State() domain.DeviceState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// RecordUserNetworkActivity advances last_user_network_activity to now and
// broadcasts the updated snapshot.
func (m *Monitor) RecordUserNetworkActivity() {
	m.mu.Lock()
	m.state.LastUserNetworkActivity = time.Now()
	snapshot := m.state
	m.mu.Unlock()
	m.broadcast(snapshot)
}

// Subscribe registers a new observer and returns a channel carrying every
// subsequent state snapshot. The channel is buffered with capacity 1: a
// slow subscriber sees only the latest state, never a backlog. The caller
// must call the returned cancel function when done to free the channel.
func (m *Monitor) Subscribe() (<-chan domain.DeviceState, func()) {
	ch := make(chan domain.DeviceState, 1)
	m.subMu.Lock()
	m.subs[ch] = struct{}{}
	m.subMu.Unlock()

	cancel := func() {
		m.subMu.Lock()
		delete(m.subs, ch)
		m.subMu.Unlock()
	}
	return ch, cancel
}

// Run polls PlatformSignals at pollInterval until ctx is canceled, updating
// state and broadcasting on any change.
func (m *Monitor) Run(ctx context.Context) {
	m.refresh(ctx)

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.refresh(ctx)
		}
	}
}

func (m *Monitor) refresh(ctx context.Context) {
	netType, err := m.signals.NetworkType(ctx)
	if err != nil {
		m.logger.Warn("monitor: network type read failed", ports.Err(err))
		return
	}
	charging, err := m.signals.IsCharging(ctx)
	if err != nil {
		m.logger.Warn("monitor: charging read failed", ports.Err(err))
		return
	}
	battery, err := m.signals.BatteryLevel(ctx)
	if err != nil {
		m.logger.Warn("monitor: battery read failed", ports.Err(err))
		return
	}

	m.mu.Lock()
	changed := m.state.NetworkType != toDomainNetworkType(netType) ||
		m.state.IsCharging != charging ||
		m.state.BatteryLevel != battery
	m.state.NetworkType = toDomainNetworkType(netType)
	m.state.IsConnected = netType != ports.NetworkKindNone && netType != ports.NetworkKindUnknown
	m.state.IsCharging = charging
	m.state.BatteryLevel = battery
	snapshot := m.state
	m.mu.Unlock()

	if changed {
		m.logger.Debug("device state changed",
			ports.String("network_type", snapshot.NetworkType.String()),
			ports.Bool("is_charging", snapshot.IsCharging),
			ports.Float64("battery_level", snapshot.BatteryLevel),
		)
		m.broadcast(snapshot)
	}
}

func (m *Monitor) broadcast(state domain.DeviceState) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for ch := range m.subs {
		select {
		case ch <- state:
		default:
			// Drop the stale pending value and replace it so subscribers
			// always see the latest snapshot, never a backlog.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- state:
			default:
			}
		}
	}
}

func toDomainNetworkType(k ports.NetworkKind) domain.NetworkType {
	switch k {
	case ports.NetworkKindWiFi:
		return domain.NetworkWiFi
	case ports.NetworkKindCellular:
		return domain.NetworkCellular
	case ports.NetworkKindEthernet:
		return domain.NetworkEthernet
	case ports.NetworkKindOther:
		return domain.NetworkOther
	case ports.NetworkKindNone:
		return domain.NetworkNone
	default:
		return domain.NetworkUnknown
	}
}
