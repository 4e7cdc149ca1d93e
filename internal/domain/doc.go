// Package domain contains the core domain entities and value objects for the
// network batcher.
//
// This package represents the innermost layer of the Clean Architecture. It
// has no dependencies on infrastructure concerns (HTTP, storage, logging) and
// contains only pure business logic.
//
// # Entities
//
//   - [DeferredRequest]: a single queued outbound request awaiting a drain
//   - [TransmissionLogRecord]: an append-only record of a completed drain
//   - [DeviceState]: the device conditions the policy evaluator reasons about
//   - [Configuration]: hot-swappable tuning knobs for the whole pipeline
//
// # Design Principles
//
// Domain entities are:
//   - Free of infrastructure dependencies
//   - Focused on business rules and invariants
//   - Testable without mocks or external systems
package domain
