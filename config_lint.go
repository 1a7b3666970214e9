package goGuard

import (
	"fmt"
	"net/url"
	"time"
)

// LintSeverity grades a [LintWarning].
type LintSeverity int

const (
	// LintInfo marks informational findings.
	LintInfo LintSeverity = iota
	// LintWarn marks settings that weaken the session model.
	LintWarn
	// LintHigh marks settings that should not reach production.
	LintHigh
)

// LintWarning is one finding of [Config.Lint]. Warnings never fail Build.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintResult is the list returned by [Config.Lint].
type LintResult []LintWarning

// Codes returns the codes in order.
func (r LintResult) Codes() []string {
	out := make([]string, 0, len(r))
	for _, w := range r {
		out = append(out, w.Code)
	}
	return out
}

// Lint reports valid but questionable settings.
func (c *Config) Lint() LintResult {
	var ws LintResult

	if !c.SecureCookies() {
		ws = append(ws, LintWarning{
			Code:     "insecure_cookies",
			Severity: LintWarn,
			Message:  "token cookie is sent without the Secure attribute",
		})
	}
	if u, err := url.Parse(c.Session.BaseURL); err == nil && u.Scheme == "http" && c.SecureCookies() {
		ws = append(ws, LintWarning{
			Code:     "secure_cookie_plain_http",
			Severity: LintHigh,
			Message:  "Secure cookies are never sent to a plain http BaseURL",
		})
	}
	if c.Monitor.Interval > 5*time.Minute {
		ws = append(ws, LintWarning{
			Code:     "monitor_interval_long",
			Severity: LintInfo,
			Message:  fmt.Sprintf("expired tokens may stay authenticated for up to %s", c.Monitor.Interval),
		})
	}
	if len(c.Routes.Permissions) == 0 {
		ws = append(ws, LintWarning{
			Code:     "route_table_empty",
			Severity: LintWarn,
			Message:  "every protected path is open to any authenticated role",
		})
	}
	if !c.Audit.Enabled {
		ws = append(ws, LintWarning{
			Code:     "audit_disabled",
			Severity: LintInfo,
			Message:  "session transitions are not audited",
		})
	}

	return ws
}
