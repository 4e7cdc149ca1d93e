// Package platform provides Static, a settable ports.PlatformSignals
// adapter. Polling of the signals is done by the monitor itself.
package platform

import (
	"context"
	"sync"

	"github.com/netbatch/netbatchd/internal/ports"
)

// Static is a ports.PlatformSignals implementation that returns whatever
// values were last set via Set*. It never errors. Used by tests, and as the
// batcher's default source when no other PlatformSignals is supplied (the
// CLI relies on that default and never calls the setters, so it stays
// disconnected there).
type Static struct {
	mu       sync.RWMutex
	network  ports.NetworkKind
	charging bool
	battery  float64
}

// NewStatic creates a Static signal source starting disconnected.
func NewStatic() *Static {
	return &Static{network: ports.NetworkKindNone, battery: 1.0}
}

func (s *Static) SetNetworkType(k ports.NetworkKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.network = k
}

func (s *Static) SetCharging(charging bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.charging = charging
}

func (s *Static) SetBatteryLevel(level float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.battery = level
}

func (s *Static) NetworkType(ctx context.Context) (ports.NetworkKind, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.network, nil
}

func (s *Static) IsCharging(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.charging, nil
}

func (s *Static) BatteryLevel(ctx context.Context) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.battery, nil
}
