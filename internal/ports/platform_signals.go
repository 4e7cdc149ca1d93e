package ports

import "context"

// PlatformSignals is the injected capability the device-state monitor polls
// for OS-level connectivity and battery readings. A mobile runtime backs
// this with its native connectivity manager and battery service; tests back
// it with a fake that the caller drives directly.
type PlatformSignals interface {
	// NetworkType reports the current link type.
	NetworkType(ctx context.Context) (NetworkKind, error)

	// IsCharging reports whether the device is currently on external power.
	IsCharging(ctx context.Context) (bool, error)

	// BatteryLevel reports battery charge as a fraction in [0, 1].
	BatteryLevel(ctx context.Context) (float64, error)
}

// NetworkKind mirrors domain.NetworkType at the port boundary so adapters
// do not need to import the domain package just to report a link type.
type NetworkKind int

const (
	NetworkKindUnknown NetworkKind = iota
	NetworkKindNone
	NetworkKindWiFi
	NetworkKindCellular
	NetworkKindEthernet
	NetworkKindOther
)
