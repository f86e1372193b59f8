package cache

import "github.com/tailored-agentic-units/weakcache/observability"

// Store event types emitted during slot-table mutations. Every event
// carries the store id under the "store_id" data key.
const (
	EventSet         observability.EventType = "cache.set"
	EventRemove      observability.EventType = "cache.remove"
	EventPrune       observability.EventType = "cache.prune"
	EventClean       observability.EventType = "cache.clean"
	EventSideReclaim observability.EventType = "cache.side.reclaim"
)
