package domain

// PolicyDecision is the result of evaluating device state, configuration,
// and a priority against the ten ordered rules in the policy evaluator.
type PolicyDecision struct {
	Transmit bool
	Reason   string
}

// Wait builds a wait decision carrying reason for statistics/logging.
func Wait(reason string) PolicyDecision {
	return PolicyDecision{Transmit: false, Reason: reason}
}

// Transmitted builds a transmit decision carrying reason for statistics/logging.
func Transmitted(reason string) PolicyDecision {
	return PolicyDecision{Transmit: true, Reason: reason}
}
