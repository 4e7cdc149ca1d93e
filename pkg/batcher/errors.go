package batcher

import (
	"github.com/netbatch/netbatchd/internal/domain"
	"github.com/netbatch/netbatchd/internal/ports"
)

// Logger is re-exported so plugin packages outside this module can accept
// and log through it without importing internal/ports.
type Logger = ports.Logger

// Sentinel and typed errors, re-exported so callers can use errors.Is and
// errors.As without importing internal/domain.
var (
	ErrAlreadyRunning  = domain.ErrAlreadyRunning
	ErrNotRunning      = domain.ErrNotRunning
	ErrShutdownTimeout = domain.ErrShutdownTimeout
	ErrInvalidConfig   = domain.ErrInvalidConfig
	ErrDisabled        = domain.ErrDisabled
	ErrInvalidRequest  = domain.ErrInvalidRequest
)

// RequestFailedError is returned by Enqueue for immediate-priority
// requests that the transport completed but which came back with a
// non-2xx status.
type RequestFailedError = domain.RequestFailedError

// StorageError wraps a failure from the durable request store.
type StorageError = domain.StorageError
