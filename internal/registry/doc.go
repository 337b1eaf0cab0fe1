// Package registry persists the per-group server lists the chat commands
// operate on.
//
// Each chat group owns one pretty-printed JSON document in the data
// directory. Records carry an id assigned from a monotonically increasing
// counter; ids are never reused, names are unique within a group. Lookups
// resolve names before ids so a numeric argument can only ever mean an id
// (all-digit names are rejected outright).
//
// Documents are versioned. Files written by the registry carry the current
// schema; files in the original name-keyed layout are migrated in memory on
// load and rewritten in the new layout on the next mutation.
//
// # Concurrency
//
// A per-group mutex serializes every load-mutate-save cycle, and saves
// replace the file atomically via a temp-file rename, so concurrent commands
// against one group cannot lose updates. Distinct groups proceed in
// parallel.
package registry
