package goGuard

import "errors"

var (
	// ErrNoAuthority is the panic value raised when authority state is read
	// from a context that was never provisioned with one.
	ErrNoAuthority = errors.New("goGuard: authority consumed outside its provisioning scope")
	// ErrAuthorityClosed is returned by operations attempted after Close.
	ErrAuthorityClosed = errors.New("authority closed")
	// ErrSessionPersist is returned when a decoded token could not be written
	// to the storage tiers.
	ErrSessionPersist = errors.New("session persistence failed")
	// ErrSessionClear is returned when a storage tier could not be cleared.
	// In-memory state is reset regardless.
	ErrSessionClear = errors.New("session clear failed")
	// ErrFallbackTierRequired is returned by Build without a fallback tier.
	ErrFallbackTierRequired = errors.New("fallback tier or redis client required")
)
