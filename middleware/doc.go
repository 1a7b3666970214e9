// Package middleware exposes net/http adapters built on goGuard.Authority.
//
// # Guards
//
//   - [RouteGuard] intercepts navigation into the protected area and
//     redirects to sign-in or unauthorized pages before any page runs.
//   - [Provide] scopes the authority and a redirecting navigator to each
//     request, for page guards rendered further down the chain.
//
// RouteGuard reads the token cookie, decodes it through the authority codec
// and stores the decoded claims in the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into goGuard decisions. Route
// permissions come from permission.RouteTable; session state is never
// mutated here.
//
// # What this package must NOT do
//
//   - Verify token signatures.
//   - Touch the storage tiers.
//   - Write a response body on redirect beyond what net/http emits.
package middleware
