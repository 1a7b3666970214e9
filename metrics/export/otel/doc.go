// Package otel binds goGuard counters to OpenTelemetry observable counters.
//
// Counters that describe outcomes of one operation share an instrument:
// goguard.login and goguard.revalidate carry an "outcome" attribute and
// goguard.route an "action" attribute. goguard.login.unknown_role,
// goguard.logout, goguard.storage.clear_failure and goguard.audit.dropped
// have a single series each. A single callback reads the metrics snapshot on
// each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider; callers supply the Meter.
//   - Mutate authority state.
package otel
