// Package flows computes the outcomes of login, logout and revalidation.
//
// Each flow function (RunLogin, RunLogout, RunRevalidate) accepts a typed
// dependency struct and returns a result describing the new session and any
// storage failure. Applying the result (state swap, navigation, logging,
// metrics, audit) is left to the caller.
//
// # Architecture boundaries
//
// Flow functions coordinate the token decoder, the clock and the session
// store. They do NOT own any of these resources; ownership stays with the
// Authority.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goGuard (to avoid import cycles).
//   - Navigate, log or emit audit events.
package flows
