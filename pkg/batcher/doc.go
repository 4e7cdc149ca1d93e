// Package batcher is an embeddable, energy-aware batcher for outbound HTTP
// requests on mobile devices. It queues deferrable requests to a local
// store, watches device network and power state, and drains the queue when
// conditions are favorable or a forcing condition (queue size, payload
// size, explicit flush, going to background) requires it.
//
// Use New to create an instance from a Config, then Start to begin
// draining in the background. All other fields on Config have sensible
// defaults set via [Config.SetDefaults].
package batcher
