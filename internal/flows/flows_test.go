package flows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/goGuard/permission"
	"github.com/MrEthical07/goGuard/session"
	"github.com/MrEthical07/goGuard/token"
)

type memStore struct {
	token     string
	hasToken  bool
	expiresAt time.Time
	rec       session.Record
	hasRec    bool

	writePrimaryErr  error
	writeFallbackErr error
	readPrimaryErr   error
	readFallbackErr  error
	clears           int
}

func (m *memStore) WritePrimary(_ context.Context, tok string, expiresAt time.Time) error {
	if m.writePrimaryErr != nil {
		return m.writePrimaryErr
	}
	m.token, m.hasToken, m.expiresAt = tok, true, expiresAt
	return nil
}

func (m *memStore) WriteFallback(_ context.Context, isAuth bool, role, userID string) error {
	if m.writeFallbackErr != nil {
		return m.writeFallbackErr
	}
	m.rec = session.Record{IsAuthenticated: isAuth, Role: role, UserID: userID}
	m.hasRec = true
	return nil
}

func (m *memStore) ReadPrimary(context.Context) (string, bool, error) {
	return m.token, m.hasToken, m.readPrimaryErr
}

func (m *memStore) ReadFallback(context.Context) (session.Record, bool, error) {
	return m.rec, m.hasRec, m.readFallbackErr
}

func (m *memStore) Clear(context.Context) error {
	m.clears++
	m.token, m.hasToken = "", false
	m.rec, m.hasRec = session.Record{}, false
	return nil
}

var fixedNow = time.Unix(1_700_000_000, 0)

func newFlowTest(t *testing.T) (*memStore, Deps, *token.Issuer) {
	t.Helper()
	iss, err := token.NewIssuer([]byte("flow-test-key"), time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	store := &memStore{}
	deps := Deps{
		Decode:      token.NewCodec().Decode,
		Now:         func() time.Time { return fixedNow },
		IsKnownRole: permission.IsKnownRole,
		Store:       store,
	}
	return store, deps, iss
}

func mint(t *testing.T, iss *token.Issuer, role, userID string, exp time.Time) string {
	t.Helper()
	raw, err := iss.Issue(token.Claims{Role: role, UserID: userID, ExpiresAt: exp.Unix()}, fixedNow)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return raw
}

func TestRunLoginPersistsBothTiers(t *testing.T) {
	store, deps, iss := newFlowTest(t)
	exp := fixedNow.Add(time.Hour)
	raw := mint(t, iss, "admin", "42", exp)

	res := RunLogin(context.Background(), raw, deps)
	if res.Outcome != LoginAccepted {
		t.Fatalf("expected accepted, got %v (%v)", res.Outcome, res.Err)
	}
	if res.Session != session.Authenticated("admin", "42") {
		t.Fatalf("unexpected session %+v", res.Session)
	}
	if store.token != raw || !store.expiresAt.Equal(exp) {
		t.Fatalf("primary not written: %q %v", store.token, store.expiresAt)
	}
	if store.rec != (session.Record{IsAuthenticated: true, Role: "admin", UserID: "42"}) {
		t.Fatalf("fallback not written: %+v", store.rec)
	}
}

func TestRunLoginDefaultsRole(t *testing.T) {
	store, deps, iss := newFlowTest(t)
	raw := mint(t, iss, "", "", fixedNow.Add(time.Hour))

	res := RunLogin(context.Background(), raw, deps)
	if res.Session.Role != permission.RoleUser || store.rec.Role != permission.RoleUser {
		t.Fatalf("expected default role user, got %q / %q", res.Session.Role, store.rec.Role)
	}
	if res.UnknownRole {
		t.Fatal("default role must count as known")
	}
}

func TestRunLoginUnknownRoleProceeds(t *testing.T) {
	_, deps, iss := newFlowTest(t)
	raw := mint(t, iss, "auditor", "7", fixedNow.Add(time.Hour))

	res := RunLogin(context.Background(), raw, deps)
	if res.Outcome != LoginAccepted || !res.UnknownRole {
		t.Fatalf("expected accepted with unknown role flag, got %+v", res)
	}
	if res.Session.Role != "auditor" {
		t.Fatalf("role should be kept, got %q", res.Session.Role)
	}
}

func TestRunLoginMalformedClears(t *testing.T) {
	store, deps, _ := newFlowTest(t)
	store.hasRec = true
	store.rec = session.Record{IsAuthenticated: true, Role: "user"}

	res := RunLogin(context.Background(), "not-a-jwt", deps)
	if res.Outcome != LoginRejected {
		t.Fatalf("expected rejected, got %v", res.Outcome)
	}
	if !errors.Is(res.Err, token.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", res.Err)
	}
	if res.Session.IsAuthenticated() || store.clears != 1 || store.hasRec {
		t.Fatalf("storage must be cleared and session unauthenticated: %+v clears=%d", res.Session, store.clears)
	}
}

func TestRunLoginPersistFailure(t *testing.T) {
	store, deps, iss := newFlowTest(t)
	store.writeFallbackErr = errors.New("quota exceeded")

	res := RunLogin(context.Background(), mint(t, iss, "user", "1", fixedNow.Add(time.Hour)), deps)
	if res.Outcome != LoginPersistFailed {
		t.Fatalf("expected persist failure, got %v", res.Outcome)
	}
	if res.Session.IsAuthenticated() || store.hasToken || store.clears != 1 {
		t.Fatalf("partial write must be cleared: hasToken=%v clears=%d", store.hasToken, store.clears)
	}
}

func TestRunLoginFlagsExpiredToken(t *testing.T) {
	_, deps, iss := newFlowTest(t)
	res := RunLogin(context.Background(), mint(t, iss, "user", "1", fixedNow), deps)
	if !res.Expired {
		t.Fatal("token expiring at now must be flagged expired")
	}
}

func TestRunLogoutAlwaysUnauthenticated(t *testing.T) {
	store, deps, _ := newFlowTest(t)
	for i := 0; i < 2; i++ {
		res := RunLogout(context.Background(), deps)
		if res.Session != session.Unauthenticated() || res.ClearErr != nil {
			t.Fatalf("logout %d: %+v", i, res)
		}
	}
	if store.clears != 2 {
		t.Fatalf("expected two clears, got %d", store.clears)
	}
}

func TestRunRevalidate(t *testing.T) {
	_, _, iss := newFlowTest(t)
	valid := mint(t, iss, "admin", "9", fixedNow.Add(time.Minute))
	atNow := mint(t, iss, "admin", "9", fixedNow)
	past := mint(t, iss, "user", "9", fixedNow.Add(-time.Minute))

	tests := []struct {
		name        string
		setup       func(*memStore)
		want        RevalidateOutcome
		wantSession session.Session
		wantCleared bool
	}{
		{
			name:        "valid token confirms",
			setup:       func(m *memStore) { m.token, m.hasToken = valid, true },
			want:        RevalidateConfirmed,
			wantSession: session.Authenticated("admin", "9"),
		},
		{
			name:        "exp equal to now is expired",
			setup:       func(m *memStore) { m.token, m.hasToken = atNow, true },
			want:        RevalidateExpired,
			wantSession: session.Unauthenticated(),
			wantCleared: true,
		},
		{
			name:        "past exp is expired",
			setup:       func(m *memStore) { m.token, m.hasToken = past, true },
			want:        RevalidateExpired,
			wantSession: session.Unauthenticated(),
			wantCleared: true,
		},
		{
			name:        "malformed token clears",
			setup:       func(m *memStore) { m.token, m.hasToken = "a.b", true },
			want:        RevalidateMalformed,
			wantSession: session.Unauthenticated(),
			wantCleared: true,
		},
		{
			name: "fallback restores optimistically",
			setup: func(m *memStore) {
				m.hasRec = true
				m.rec = session.Record{IsAuthenticated: true, Role: "admin", UserID: "3"}
			},
			want:        RevalidateFallbackRestored,
			wantSession: session.Authenticated("admin", "3"),
		},
		{
			name: "fallback flag without role is no session",
			setup: func(m *memStore) {
				m.hasRec = true
				m.rec = session.Record{IsAuthenticated: true, UserID: "3"}
			},
			want:        RevalidateNoSession,
			wantSession: session.Unauthenticated(),
		},
		{
			name: "fallback role without flag is no session",
			setup: func(m *memStore) {
				m.hasRec = true
				m.rec = session.Record{Role: "admin"}
			},
			want:        RevalidateNoSession,
			wantSession: session.Unauthenticated(),
		},
		{
			name:        "empty storage is no session",
			setup:       func(*memStore) {},
			want:        RevalidateNoSession,
			wantSession: session.Unauthenticated(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, deps, _ := newFlowTest(t)
			tt.setup(store)
			res := RunRevalidate(context.Background(), deps)
			if res.Outcome != tt.want {
				t.Fatalf("outcome = %v, want %v", res.Outcome, tt.want)
			}
			if res.Session != tt.wantSession {
				t.Fatalf("session = %+v, want %+v", res.Session, tt.wantSession)
			}
			if cleared := store.clears > 0; cleared != tt.wantCleared {
				t.Fatalf("cleared = %v, want %v", cleared, tt.wantCleared)
			}
		})
	}
}

func TestRunRevalidateReadFailureLeavesState(t *testing.T) {
	store, deps, _ := newFlowTest(t)
	store.readPrimaryErr = session.ErrStoreUnavailable

	res := RunRevalidate(context.Background(), deps)
	if res.Outcome != RevalidateReadFailed || !errors.Is(res.Err, session.ErrStoreUnavailable) {
		t.Fatalf("expected read failure, got %+v", res)
	}
	if store.clears != 0 {
		t.Fatal("read failure must not clear storage")
	}

	store.readPrimaryErr = nil
	store.readFallbackErr = session.ErrStoreUnavailable
	if res := RunRevalidate(context.Background(), deps); res.Outcome != RevalidateReadFailed {
		t.Fatalf("fallback read failure: got %v", res.Outcome)
	}
}
