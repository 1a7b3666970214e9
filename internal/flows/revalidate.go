package flows

import (
	"context"

	"github.com/MrEthical07/goGuard/session"
	"github.com/MrEthical07/goGuard/token"
)

// RevalidateOutcome classifies one monitor tick.
type RevalidateOutcome int

const (
	// RevalidateConfirmed means the primary token is valid.
	RevalidateConfirmed RevalidateOutcome = iota
	// RevalidateExpired means the primary token expired and storage was cleared.
	RevalidateExpired
	// RevalidateMalformed means the primary token failed to decode and storage was cleared.
	RevalidateMalformed
	// RevalidateFallbackRestored means the fallback tier restored the session.
	RevalidateFallbackRestored
	// RevalidateNoSession means neither tier holds a session.
	RevalidateNoSession
	// RevalidateReadFailed means a tier could not be read; the session is
	// left as it was.
	RevalidateReadFailed
)

func (o RevalidateOutcome) String() string {
	switch o {
	case RevalidateConfirmed:
		return "confirmed"
	case RevalidateExpired:
		return "expired"
	case RevalidateMalformed:
		return "malformed"
	case RevalidateFallbackRestored:
		return "fallback_restored"
	case RevalidateNoSession:
		return "no_session"
	case RevalidateReadFailed:
		return "read_failed"
	default:
		return "unknown"
	}
}

// RevalidateResult is the outcome of [RunRevalidate]. Session is meaningful
// for every outcome except RevalidateReadFailed.
type RevalidateResult struct {
	Outcome  RevalidateOutcome
	Session  session.Session
	Claims   *token.Claims
	Err      error
	ClearErr error
}

// RunRevalidate inspects the primary tier, then the fallback tier, and
// returns the session they describe.
//
// A fallback record with IsAuthenticated and a role is trusted as is: no
// expiry or claim check applies to it. A record missing its role is not a
// session.
func RunRevalidate(ctx context.Context, deps Deps) RevalidateResult {
	raw, ok, err := deps.Store.ReadPrimary(ctx)
	if err != nil {
		return RevalidateResult{Outcome: RevalidateReadFailed, Err: err}
	}

	if ok {
		claims, err := deps.Decode(raw)
		switch {
		case err != nil:
			return RevalidateResult{
				Outcome:  RevalidateMalformed,
				Session:  session.Unauthenticated(),
				Err:      err,
				ClearErr: deps.Store.Clear(ctx),
			}
		case token.IsExpired(claims, deps.now()):
			return RevalidateResult{
				Outcome:  RevalidateExpired,
				Session:  session.Unauthenticated(),
				Claims:   claims,
				ClearErr: deps.Store.Clear(ctx),
			}
		}
		return RevalidateResult{
			Outcome: RevalidateConfirmed,
			Session: session.Authenticated(claims.RoleOrDefault(), claims.UserID),
			Claims:  claims,
		}
	}

	rec, ok, err := deps.Store.ReadFallback(ctx)
	if err != nil {
		return RevalidateResult{Outcome: RevalidateReadFailed, Err: err}
	}
	if ok && rec.IsAuthenticated && rec.Role != "" {
		return RevalidateResult{
			Outcome: RevalidateFallbackRestored,
			Session: session.Authenticated(rec.Role, rec.UserID),
		}
	}
	return RevalidateResult{
		Outcome: RevalidateNoSession,
		Session: session.Unauthenticated(),
	}
}
