// Package permission holds the role vocabulary and the static route permission
// table consulted by navigation-time guards.
//
// # Route table
//
// [RouteTable] maps an exact request path to the set of roles allowed to open
// it. Paths that are not registered are unrestricted for any authenticated
// caller; the table never matches prefixes.
//
// # Architecture boundaries
//
// This package is a pure in-memory data structure with no I/O.
//
// # What this package must NOT do
//
//   - Access Redis, cookies, or the network.
//   - Import goGuard, token, or session.
//   - Interpret path prefixes or substrings (that belongs to the route guard).
package permission
