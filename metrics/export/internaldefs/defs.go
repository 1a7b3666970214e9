package internaldefs

import (
	goGuard "github.com/MrEthical07/goGuard"
)

// CounterDef binds a counter to its exported names. Prometheus gets one flat
// series per counter under Name. OpenTelemetry groups counters of the same
// Instrument and tells them apart by the instrument's attribute, set to
// AttrValue.
type CounterDef struct {
	ID   goGuard.MetricID
	Name string
	Help string

	Instrument string
	AttrValue  string
}

// Instrument is one OpenTelemetry counter. AttrKey is empty for
// instruments fed by a single counter.
type Instrument struct {
	Name    string
	Help    string
	AttrKey string
}

// AuditDroppedName is the counter exported for the dispatcher drop count.
const AuditDroppedName = "goguard_audit_dropped_total"

// AuditDroppedHelp describes [AuditDroppedName].
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."

// AuditDroppedInstrument is the OpenTelemetry name of [AuditDroppedName].
const AuditDroppedInstrument = "goguard.audit.dropped"

const (
	InstrumentLogin        = "goguard.login"
	InstrumentUnknownRole  = "goguard.login.unknown_role"
	InstrumentLogout       = "goguard.logout"
	InstrumentRevalidate   = "goguard.revalidate"
	InstrumentClearFailure = "goguard.storage.clear_failure"
	InstrumentRoute        = "goguard.route"
)

// Instruments lists the OpenTelemetry counters in export order.
var Instruments = []Instrument{
	{Name: InstrumentLogin, Help: "Login attempts by outcome.", AttrKey: "outcome"},
	{Name: InstrumentUnknownRole, Help: "Accepted tokens carrying a role outside the known set."},
	{Name: InstrumentLogout, Help: "Logout operations."},
	{Name: InstrumentRevalidate, Help: "Session monitor checks by outcome.", AttrKey: "outcome"},
	{Name: InstrumentClearFailure, Help: "Failed storage clears."},
	{Name: InstrumentRoute, Help: "Route guard decisions by action.", AttrKey: "action"},
}

// CounterDefs lists every exported counter in MetricID order.
var CounterDefs = []CounterDef{
	{ID: goGuard.MetricLoginSuccess, Name: "goguard_login_success_total", Help: "Tokens accepted by login.",
		Instrument: InstrumentLogin, AttrValue: "accepted"},
	{ID: goGuard.MetricLoginRejected, Name: "goguard_login_rejected_total", Help: "Tokens rejected by login as undecodable.",
		Instrument: InstrumentLogin, AttrValue: "rejected"},
	{ID: goGuard.MetricLoginUnknownRole, Name: "goguard_login_unknown_role_total", Help: "Accepted tokens carrying a role outside the known set.",
		Instrument: InstrumentUnknownRole},
	{ID: goGuard.MetricLoginPersistFailure, Name: "goguard_login_persist_failure_total", Help: "Logins abandoned because the session could not be stored.",
		Instrument: InstrumentLogin, AttrValue: "persist_failed"},
	{ID: goGuard.MetricLogout, Name: "goguard_logout_total", Help: "Logout operations.",
		Instrument: InstrumentLogout},
	{ID: goGuard.MetricRevalidateConfirmed, Name: "goguard_revalidate_confirmed_total", Help: "Monitor checks that confirmed a valid token.",
		Instrument: InstrumentRevalidate, AttrValue: "confirmed"},
	{ID: goGuard.MetricRevalidateInvalidated, Name: "goguard_revalidate_invalidated_total", Help: "Monitor checks that cleared an expired or malformed token.",
		Instrument: InstrumentRevalidate, AttrValue: "invalidated"},
	{ID: goGuard.MetricRevalidateFallbackRestored, Name: "goguard_revalidate_fallback_restored_total", Help: "Monitor checks that restored the session from the fallback tier.",
		Instrument: InstrumentRevalidate, AttrValue: "fallback_restored"},
	{ID: goGuard.MetricRevalidateNoSession, Name: "goguard_revalidate_no_session_total", Help: "Monitor checks that found no stored session.",
		Instrument: InstrumentRevalidate, AttrValue: "no_session"},
	{ID: goGuard.MetricRevalidateStorageError, Name: "goguard_revalidate_storage_error_total", Help: "Monitor checks skipped because storage was unreadable.",
		Instrument: InstrumentRevalidate, AttrValue: "storage_error"},
	{ID: goGuard.MetricStorageClearFailure, Name: "goguard_storage_clear_failure_total", Help: "Failed storage clears.",
		Instrument: InstrumentClearFailure},
	{ID: goGuard.MetricRouteAllowed, Name: "goguard_route_allowed_total", Help: "Navigations allowed by the route guard.",
		Instrument: InstrumentRoute, AttrValue: "allow"},
	{ID: goGuard.MetricRouteSignIn, Name: "goguard_route_signin_total", Help: "Navigations redirected to sign-in.",
		Instrument: InstrumentRoute, AttrValue: "signin"},
	{ID: goGuard.MetricRouteUnauthorized, Name: "goguard_route_unauthorized_total", Help: "Navigations redirected to the unauthorized page.",
		Instrument: InstrumentRoute, AttrValue: "unauthorized"},
}
