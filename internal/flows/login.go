package flows

import (
	"context"

	"github.com/MrEthical07/goGuard/session"
	"github.com/MrEthical07/goGuard/token"
)

// LoginOutcome classifies a login attempt.
type LoginOutcome int

const (
	// LoginAccepted means the token was stored and the session authenticated.
	LoginAccepted LoginOutcome = iota
	// LoginRejected means the token could not be decoded.
	LoginRejected
	// LoginPersistFailed means the token decoded but storage failed.
	LoginPersistFailed
)

// LoginResult is the outcome of [RunLogin]. Session is always the session
// to install, including on failure.
type LoginResult struct {
	Outcome     LoginOutcome
	Session     session.Session
	Claims      *token.Claims
	UnknownRole bool
	// Expired marks a token accepted although it was already expired; the
	// primary tier drops it on write.
	Expired  bool
	Err      error
	ClearErr error
}

// RunLogin decodes raw, persists it to both tiers and returns the resulting
// session. Every failure clears storage and yields an unauthenticated
// session.
func RunLogin(ctx context.Context, raw string, deps Deps) LoginResult {
	claims, err := deps.Decode(raw)
	if err != nil {
		return LoginResult{
			Outcome:  LoginRejected,
			Session:  session.Unauthenticated(),
			Err:      err,
			ClearErr: deps.Store.Clear(ctx),
		}
	}

	role := claims.RoleOrDefault()
	res := LoginResult{
		Claims:  claims,
		Expired: token.IsExpired(claims, deps.now()),
	}
	if deps.IsKnownRole != nil {
		res.UnknownRole = !deps.IsKnownRole(role)
	}

	if err := deps.Store.WritePrimary(ctx, raw, claims.Expiry()); err != nil {
		return persistFailed(ctx, res, err, deps)
	}
	if err := deps.Store.WriteFallback(ctx, true, role, claims.UserID); err != nil {
		return persistFailed(ctx, res, err, deps)
	}

	res.Outcome = LoginAccepted
	res.Session = session.Authenticated(role, claims.UserID)
	return res
}

func persistFailed(ctx context.Context, res LoginResult, err error, deps Deps) LoginResult {
	res.Outcome = LoginPersistFailed
	res.Session = session.Unauthenticated()
	res.Err = err
	res.ClearErr = deps.Store.Clear(ctx)
	return res
}
