// Package session models the in-memory session view and its two-tier
// persistence.
//
// # Tiers
//
// The primary tier holds the raw token, expires with the token's exp claim,
// and travels with outgoing requests ([CookieTier], or [RedisTier] for
// headless clients). The fallback tier mirrors isAuthenticated, role and user
// ID as independent keys with no expiry at all; only an explicit
// [Store.Clear] removes them.
//
// # Architecture boundaries
//
// This package owns the [Store], the tier implementations and the [Session]
// value. It does NOT decode tokens or decide what a tier's contents mean;
// reconciliation policy belongs to the authority.
//
// # What this package must NOT do
//
//   - Import goGuard or token (no upward imports).
//   - Add a TTL to fallback keys.
//   - Synchronize tiers across processes or browser tabs.
package session
