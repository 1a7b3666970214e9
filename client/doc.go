// Package client calls the backend sign-in and sign-up endpoints and hands
// issued tokens to goGuard.Authority.Login.
//
// Failures never escape as Go errors: every call returns an [ActionResult]
// shaped for form rendering, with field errors keyed by input name and
// "form" for errors not tied to one field.
package client
