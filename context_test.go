package goGuard

import (
	"context"
	"errors"
	"testing"
)

func TestFromContextReturnsProvisionedAuthority(t *testing.T) {
	at, cleanup := newAuthorityTest(t, nil)
	defer cleanup()

	ctx := WithAuthority(context.Background(), at.authority)
	if got := FromContext(ctx); got != at.authority {
		t.Fatal("expected provisioned authority")
	}
}

func TestFromContextPanicsOutsideScope(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrNoAuthority) {
			t.Fatalf("expected ErrNoAuthority panic, got %v", r)
		}
	}()
	FromContext(context.Background())
}

func TestFromContextPanicsOnNilAuthority(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	FromContext(WithAuthority(context.Background(), nil))
}

func TestNavigatorForPrefersContext(t *testing.T) {
	at, cleanup := newAuthorityTest(t, nil)
	defer cleanup()

	scoped := &recordingNavigator{}
	ctx := ContextWithNavigator(context.Background(), scoped)
	if err := at.authority.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if scoped.Last() != "/signin" {
		t.Fatalf("expected scoped navigation, got %v", scoped.Paths())
	}
	if len(at.nav.Paths()) != 0 {
		t.Fatalf("authority navigator must not be used, got %v", at.nav.Paths())
	}
}
