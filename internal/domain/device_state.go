package domain

import "time"

// NetworkType enumerates the link types the monitor can report.
type NetworkType int

const (
	NetworkUnknown NetworkType = iota
	NetworkNone
	NetworkWiFi
	NetworkCellular
	NetworkEthernet
	NetworkOther
)

// String returns the wire/log form of a NetworkType.
func (n NetworkType) String() string {
	switch n {
	case NetworkWiFi:
		return "wifi"
	case NetworkCellular:
		return "cellular"
	case NetworkEthernet:
		return "ethernet"
	case NetworkOther:
		return "other"
	case NetworkNone:
		return "none"
	default:
		return "unknown"
	}
}

// DeviceState is the monitor's current observation of device conditions.
// It is shared-read by every component; only the monitor mutates it, and it
// always hands out copies rather than a pointer into its own state.
type DeviceState struct {
	NetworkType             NetworkType
	IsConnected             bool
	IsCharging              bool
	BatteryLevel            float64
	LastUserNetworkActivity time.Time
}

// zeroActivity is the "never" sentinel for LastUserNetworkActivity: a
// DeviceState built with the zero value reports no user activity has ever
// been observed, so IsWithinPiggybackWindow is always false for it.
var zeroActivity time.Time

// IsWithinPiggybackWindow reports whether now is within w of the last
// user-initiated network activity, i.e. whether the radio is presumed warm.
func (s DeviceState) IsWithinPiggybackWindow(now time.Time, w time.Duration) bool {
	if s.LastUserNetworkActivity.Equal(zeroActivity) {
		return false
	}
	return now.Sub(s.LastUserNetworkActivity) < w
}
