package app

import (
	"time"

	"github.com/netbatch/netbatchd/internal/domain"
)

const lowBatteryThreshold = 0.20

// EvaluatePolicy is the pure decision function the Scheduler consults
// before a non-forced drain: given the device's current state, the active
// configuration, and the priority the drain would represent, it returns
// whether to transmit and why. Rules are evaluated in order; the first
// match wins.
func EvaluatePolicy(state domain.DeviceState, cfg domain.Configuration, priority domain.Priority) domain.PolicyDecision {
	switch {
	case !state.IsConnected:
		return domain.Wait("no network")
	case priority == domain.PriorityImmediate:
		return domain.Transmitted("immediate")
	case state.NetworkType == domain.NetworkCellular && !cfg.AllowCellular:
		return domain.Wait("cellular not allowed")
	case priority == domain.PriorityBulk && cfg.RequireWiFiForBulk && state.NetworkType != domain.NetworkWiFi:
		return domain.Wait("bulk requires WiFi")
	case state.BatteryLevel < lowBatteryThreshold && !state.IsCharging && priority.IsDeferrableOrBulk():
		return domain.Wait("low battery")
	case state.NetworkType == domain.NetworkWiFi && state.IsCharging:
		return domain.Transmitted("optimal")
	case (state.NetworkType == domain.NetworkWiFi || state.IsCharging) && priority != domain.PriorityBulk:
		return domain.Transmitted("good conditions")
	case state.IsWithinPiggybackWindow(time.Now(), cfg.PiggybackWindow):
		return domain.Transmitted("radio warm")
	case priority.IsDeferrableOrBulk():
		return domain.Wait("awaiting better conditions")
	default:
		return domain.Transmitted("default allow")
	}
}
