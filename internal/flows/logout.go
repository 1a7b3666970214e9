package flows

import (
	"context"

	"github.com/MrEthical07/goGuard/session"
)

// LogoutResult is the outcome of [RunLogout].
type LogoutResult struct {
	Session  session.Session
	ClearErr error
}

// RunLogout clears both tiers. The returned session is unauthenticated even
// when clearing failed.
func RunLogout(ctx context.Context, deps Deps) LogoutResult {
	return LogoutResult{
		Session:  session.Unauthenticated(),
		ClearErr: deps.Store.Clear(ctx),
	}
}
