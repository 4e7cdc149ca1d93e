package batcher

import "github.com/netbatch/netbatchd/internal/domain"

// Type aliases so callers can spell the types this package's methods
// return or accept without reaching into internal/domain, which they
// cannot import directly.

// RequestID identifies a queued DeferredRequest.
type RequestID = domain.RequestID

// Priority classes a request from most to least latency-tolerant.
type Priority = domain.Priority

const (
	PriorityImmediate  = domain.PriorityImmediate
	PrioritySoon       = domain.PrioritySoon
	PriorityDeferrable = domain.PriorityDeferrable
	PriorityBulk       = domain.PriorityBulk

	// PriorityAuto is the zero value of Priority. Passing it to
	// Batcher.Enqueue asks the classifier to assign a priority from the
	// configured domain rules instead of pinning one explicitly.
	PriorityAuto Priority = 0
)

// ParsePriority parses the string form Priority.String produces.
func ParsePriority(s string) (Priority, bool) {
	return domain.ParsePriority(s)
}

// Configuration is the set of hot-swappable tuning knobs embedded in
// Config.
type Configuration = domain.Configuration

// Statistics is the derived snapshot returned by Batcher.Statistics.
type Statistics = domain.Statistics

// DeviceState is a snapshot of device network and power conditions, as
// returned on the channel from Batcher.Subscribe.
type DeviceState = domain.DeviceState

// NetworkType enumerates the link types a DeviceState can report.
type NetworkType = domain.NetworkType

const (
	NetworkUnknown  = domain.NetworkUnknown
	NetworkNone     = domain.NetworkNone
	NetworkWiFi     = domain.NetworkWiFi
	NetworkCellular = domain.NetworkCellular
	NetworkEthernet = domain.NetworkEthernet
	NetworkOther    = domain.NetworkOther
)

// PresetBalanced, PresetBatterySaver, and PresetMinimal are the built-in
// Configuration presets from spec §6; assign the result to
// Config.Configuration to start from one instead of DefaultConfig's
// balanced preset.
var (
	PresetBalanced     = domain.PresetBalanced
	PresetBatterySaver = domain.PresetBatterySaver
	PresetMinimal      = domain.PresetMinimal
)
