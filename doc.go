// Package goGuard provides the client-side session and role-based
// authorization runtime of a REST-backed application: token lifecycle,
// two-tier session persistence, periodic revalidation, and the state consumed
// by navigation guards, page guards and conditional rendering.
//
// An [Authority] is built once per application through [Builder.Build] and
// lives until [Authority.Close]. It is safe for concurrent use.
//
// # Architecture boundaries
//
// goGuard is the public surface. It exposes [Authority], [Builder], [Config],
// [Navigator] and value types. Outcome computation for login, logout and
// revalidation lives under internal/flows; storage tiers live in session;
// token decoding lives in token.
//
// # Trust model
//
// Token claims are trusted without signature verification. When the primary
// tier holds no token, the fallback tier is trusted optimistically: a stored
// isAuthenticated flag restores the session with no expiry or claim check.
// The fallback tier never expires on its own. Storage tiers are not
// reconciled across processes or tabs; last write wins.
//
// # What this package must NOT do
//
//   - Verify token signatures.
//   - Add expiry to the fallback tier.
//   - Retry failed storage operations outside the monitor's next tick.
package goGuard
