// Package metrics exposes Prometheus instruments for the bot's hot
// paths: command dispatch, server pings, status-cache traffic, and
// card rendering.
//
// The Collector is a process-wide singleton registered against the
// default Prometheus registry; construct it once with NewCollector and
// share the pointer. All observe methods are safe to call on a nil
// *Collector so callers that run without metrics (tests, one-shot
// tooling) need no guards.
package metrics
