// Package internal holds helpers private to goGuard.
//
// # Sub-packages
//
//   - flows: pure functions computing the outcome of login, logout and
//     session revalidation from decoded claims and storage reads
//
// # What this package must NOT do
//
//   - Export types that appear in the public goGuard API.
//   - Be imported by any package outside the goGuard module.
package internal
