// Package realtime holds the identifiers shared by the live-update components:
// connections, topics and the topic naming scheme.
//
// Subpackages:
//   - subscription: topic -> connection registry
//   - presence: which riders are reachable right now
//   - dispatcher: routes committed domain events to per-connection outboxes
//   - offers: per-order claim window timers
//   - hub: connection lifecycle and topic authorization
//   - wire: outbound frame formats
package realtime
