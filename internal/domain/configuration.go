package domain

import "time"

// Configuration holds the hot-swappable tuning knobs for the whole batching
// pipeline. It is owned by the public façade; every other component reads a
// snapshot of it at each decision point rather than pinning a reference
// across a suspension point.
type Configuration struct {
	MaxDeferralTime time.Duration
	MinBatchInterval time.Duration
	PiggybackWindow  time.Duration
	MaxQueueSize     int
	MaxPayloadSize   int
	MaxBatchSize     int

	PreferWiFi     bool
	PreferCharging bool

	PiggybackOnUserRequests bool
	FlushOnBackground       bool
	AllowCellular           bool
	RequireWiFiForBulk      bool

	ImmediateDomains   []string
	DeferrableDomains  []string

	EnableLogging bool
	EnableMetrics bool
}

// Clone returns a deep-enough copy for safe concurrent snapshotting: the
// domain slices are copied so a caller mutating its own Configuration after
// handing it to the façade cannot race with a reader holding a snapshot.
func (c Configuration) Clone() Configuration {
	out := c
	out.ImmediateDomains = append([]string(nil), c.ImmediateDomains...)
	out.DeferrableDomains = append([]string(nil), c.DeferrableDomains...)
	return out
}

// sharedPresetDefaults are the fields common to every preset in spec §6.
func sharedPresetDefaults() Configuration {
	return Configuration{
		PiggybackWindow:         5 * time.Second,
		MaxQueueSize:            100,
		MaxPayloadSize:          100_000,
		MaxBatchSize:            20,
		PreferWiFi:              true,
		PreferCharging:          true,
		PiggybackOnUserRequests: true,
		FlushOnBackground:       true,
		AllowCellular:           true,
		EnableLogging:           true,
		EnableMetrics:           true,
	}
}

// PresetBalanced is the default preset: moderate deferral, frequent drains.
func PresetBalanced() Configuration {
	c := sharedPresetDefaults()
	c.MaxDeferralTime = 900 * time.Second
	c.MinBatchInterval = 60 * time.Second
	c.RequireWiFiForBulk = true
	return c
}

// PresetBatterySaver trades latency for fewer radio wake-ups.
func PresetBatterySaver() Configuration {
	c := sharedPresetDefaults()
	c.MaxDeferralTime = 1800 * time.Second
	c.MinBatchInterval = 300 * time.Second
	c.RequireWiFiForBulk = true
	return c
}

// PresetMinimal drains aggressively and allows bulk traffic over cellular.
func PresetMinimal() Configuration {
	c := sharedPresetDefaults()
	c.MaxDeferralTime = 300 * time.Second
	c.MinBatchInterval = 30 * time.Second
	c.RequireWiFiForBulk = false
	return c
}
