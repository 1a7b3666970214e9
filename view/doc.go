// Package view provides templ components that gate rendering on the session
// scoped to the render context by goGuard.WithAuthority.
//
// [RequireRole] guards a whole page and navigates away on denial.
// [ForRoles] shows or hides a fragment and never navigates.
//
// Both read the authority at render time; rendering them outside a
// provisioned context panics with goGuard.ErrNoAuthority.
package view
