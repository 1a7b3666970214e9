// Package prometheus exposes goGuard counters through a client_golang
// collector.
//
// [NewCollector] reads a metrics snapshot on every scrape and emits one
// constant counter per definition, named goguard_*_total. [Handler] serves
// the collector from a private registry.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry; callers choose the
//     registry or mount the Handler.
//   - Mutate authority state.
package prometheus
