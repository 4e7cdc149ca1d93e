package batcher

import (
	"github.com/netbatch/netbatchd/internal/app"
)

// EventHandler receives Batcher lifecycle and drain events. All methods
// are called synchronously from the Batcher's internal goroutines, so a
// slow handler slows the batcher; handlers that need to do real work
// should hand off to their own goroutine.
type EventHandler interface {
	OnStateChange(StateChangeEvent)
	OnDrainComplete(DrainCompleteEvent)
	OnDrainError(DrainErrorEvent)
}

// StateChangeEvent reports a lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// DrainCompleteEvent reports the outcome of a drain attempt that ran to
// completion, successfully or not.
type DrainCompleteEvent struct {
	Trigger      string
	SuccessCount int
	SuccessBytes int64
	FailureCount int
}

// DrainErrorEvent reports a drain attempt abandoned due to a store error.
type DrainErrorEvent struct {
	Trigger string
	Error   error
}

// eventEmitterWrapper adapts EventHandler to the internal lifecycle and
// scheduler emitter interfaces, the same shape the teacher's
// eventEmitterWrapper adapts its own EventHandler with.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnDrainComplete(result app.DrainResult, trigger app.DrainTrigger) {
	if e.handler == nil {
		return
	}
	e.handler.OnDrainComplete(DrainCompleteEvent{
		Trigger:      trigger.String(),
		SuccessCount: result.SuccessCount,
		SuccessBytes: result.SuccessBytes,
		FailureCount: result.FailureCount,
	})
}

func (e *eventEmitterWrapper) OnDrainError(err error, trigger app.DrainTrigger) {
	if e.handler == nil {
		return
	}
	e.handler.OnDrainError(DrainErrorEvent{
		Trigger: trigger.String(),
		Error:   err,
	})
}
