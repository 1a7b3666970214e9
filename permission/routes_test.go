package permission

import "testing"

func TestDefaultRouteTable(t *testing.T) {
	table, err := NewRouteTableFrom(DefaultRoutes())
	if err != nil {
		t.Fatalf("build table: %v", err)
	}
	if table.Count() != 4 {
		t.Fatalf("expected 4 routes, got %d", table.Count())
	}

	if !table.Allows("/protected/dashboard", RoleUser) {
		t.Fatal("expected user on dashboard")
	}
	if !table.Allows("/protected/dashboard", RoleAdmin) {
		t.Fatal("expected admin on dashboard")
	}
	if table.Allows("/protected/admin/settings", RoleUser) {
		t.Fatal("expected user rejected on admin settings")
	}
	if !table.Allows("/protected/station-manage", RoleUser) {
		t.Fatal("expected unregistered path to allow any role")
	}
}

func TestRouteTableLookupIsExact(t *testing.T) {
	table, err := NewRouteTableFrom(DefaultRoutes())
	if err != nil {
		t.Fatalf("build table: %v", err)
	}

	if _, ok := table.Lookup("/protected/admin/users/42"); ok {
		t.Fatal("expected nested path to be unregistered")
	}

	roles, ok := table.Lookup("/protected/admin")
	if !ok || len(roles) != 1 || roles[0] != RoleAdmin {
		t.Fatalf("unexpected admin entry: %v %v", roles, ok)
	}

	roles[0] = RoleUser
	again, _ := table.Lookup("/protected/admin")
	if again[0] != RoleAdmin {
		t.Fatal("lookup must return a copy")
	}
}

func TestRouteTableRegisterValidation(t *testing.T) {
	table := NewRouteTable()

	if err := table.Register("protected", RoleUser); err == nil {
		t.Fatal("expected relative path to be rejected")
	}
	if err := table.Register("/protected/x"); err == nil {
		t.Fatal("expected empty role set to be rejected")
	}
	if err := table.Register("/protected/x", RoleUser, ""); err == nil {
		t.Fatal("expected empty role to be rejected")
	}
	if err := table.Register("/protected/x", RoleUser, RoleUser); err != nil {
		t.Fatalf("register: %v", err)
	}
	if roles, _ := table.Lookup("/protected/x"); len(roles) != 1 {
		t.Fatalf("expected duplicate roles collapsed, got %v", roles)
	}
	if err := table.Register("/protected/x", RoleAdmin); err == nil {
		t.Fatal("expected duplicate path to be rejected")
	}

	table.Freeze()
	if err := table.Register("/protected/y", RoleAdmin); err == nil {
		t.Fatal("expected frozen table to reject registration")
	}
}

func TestIsKnownRole(t *testing.T) {
	if !IsKnownRole(RoleUser) || !IsKnownRole(RoleAdmin) {
		t.Fatal("expected user and admin to be known")
	}
	if IsKnownRole("conductor") {
		t.Fatal("expected conductor to be unknown")
	}
}
