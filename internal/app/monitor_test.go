package app

import (
	"context"
	"testing"
	"time"

	"github.com/netbatch/netbatchd/internal/domain"
	"github.com/netbatch/netbatchd/internal/ports"
)

type fakeSignals struct {
	network  ports.NetworkKind
	charging bool
	battery  float64
}

func newFakeSignals() *fakeSignals {
	return &fakeSignals{network: ports.NetworkKindNone, battery: 1.0}
}

func (f *fakeSignals) NetworkType(ctx context.Context) (ports.NetworkKind, error) { return f.network, nil }
func (f *fakeSignals) IsCharging(ctx context.Context) (bool, error)               { return f.charging, nil }
func (f *fakeSignals) BatteryLevel(ctx context.Context) (float64, error)          { return f.battery, nil }

func TestMonitor_RefreshUpdatesState(t *testing.T) {
	signals := newFakeSignals()
	signals.network = ports.NetworkKindWiFi
	signals.charging = true

	m := NewMonitor(signals, silentLogger{})
	m.refresh(context.Background())

	state := m.State()
	if !state.IsConnected {
		t.Error("IsConnected = false, want true")
	}
	if !state.IsCharging {
		t.Error("IsCharging = false, want true")
	}
}

func TestMonitor_SubscribeReceivesBroadcast(t *testing.T) {
	signals := newFakeSignals()
	m := NewMonitor(signals, silentLogger{})

	ch, cancel := m.Subscribe()
	defer cancel()

	signals.network = ports.NetworkKindCellular
	m.refresh(context.Background())

	select {
	case state := <-ch:
		if !state.IsConnected {
			t.Error("broadcast state IsConnected = false, want true")
		}
	case <-time.After(time.Second):
		t.Fatal("did not receive broadcast within timeout")
	}
}

func TestMonitor_SubscribeCancelStopsDelivery(t *testing.T) {
	signals := newFakeSignals()
	m := NewMonitor(signals, silentLogger{})

	ch, cancel := m.Subscribe()
	cancel()

	signals.network = ports.NetworkKindWiFi
	m.refresh(context.Background())

	select {
	case <-ch:
		t.Fatal("received broadcast after cancel")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMonitor_RecordUserNetworkActivity(t *testing.T) {
	signals := newFakeSignals()
	m := NewMonitor(signals, silentLogger{})

	before := m.State().LastUserNetworkActivity
	m.RecordUserNetworkActivity()
	after := m.State().LastUserNetworkActivity

	if !after.After(before) {
		t.Errorf("LastUserNetworkActivity did not advance: before=%v after=%v", before, after)
	}
}

func TestMonitor_SlowSubscriberSeesLatestNotBacklog(t *testing.T) {
	signals := newFakeSignals()
	m := NewMonitor(signals, silentLogger{})

	ch, cancel := m.Subscribe()
	defer cancel()

	signals.network = ports.NetworkKindWiFi
	m.refresh(context.Background())
	signals.network = ports.NetworkKindCellular
	m.refresh(context.Background())

	select {
	case state := <-ch:
		if state.NetworkType != domain.NetworkCellular {
			t.Errorf("NetworkType = %v, want the latest snapshot (cellular)", state.NetworkType)
		}
	case <-time.After(time.Second):
		t.Fatal("did not receive any broadcast")
	}

	select {
	case <-ch:
		t.Fatal("channel held a backlog entry, want only the latest snapshot")
	default:
	}
}
