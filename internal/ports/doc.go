// Package ports defines the interfaces that connect the application layer
// (internal/app) to infrastructure adapters (internal/adapters).
//
// Ports are the boundaries between the application core and the outside
// world: they describe what the core needs from the environment without
// pinning down how that need is met.
//
//   - [Store]: durable persistence for the pending-request queue and the
//     transmission log
//   - [Transport]: sends one request and reports success/failure
//   - [PlatformSignals]: the host platform's connectivity/battery feed
//   - [Logger]: structured logging abstraction
//   - [HTTPClient]: HTTP request abstraction for dependency injection
package ports
