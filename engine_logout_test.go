package portalauth

import (
	"context"
	"testing"
)

func TestLogoutClearsEverything(t *testing.T) {
	e := newTestEngine(t, nil)
	seedCoordinator(e)
	ctx := context.Background()

	if _, err := e.MemberLogin(ctx, "9822222222", "member-pass"); err != nil {
		t.Fatalf("MemberLogin: %v", err)
	}
	if err := e.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	if e.isAuthenticated() {
		t.Error("still authenticated after logout")
	}
	if got := e.Store().Token(ctx); got != "" {
		t.Errorf("token survived logout: %q", got)
	}
	if user := e.Store().User(ctx); user != nil {
		t.Errorf("user survived logout: %+v", user)
	}
	if perms := e.Store().Permissions(ctx); len(perms) != 0 {
		t.Errorf("permissions survived logout: %v", perms)
	}
	if _, ok := e.Store().SessionStart(ctx); ok {
		t.Error("session start survived logout")
	}
}

func TestLogoutIdempotent(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx := context.Background()

	if err := e.Logout(ctx); err != nil {
		t.Fatalf("logout of a logged-out engine: %v", err)
	}
	if err := e.Logout(ctx); err != nil {
		t.Fatalf("second logout: %v", err)
	}
	if e.isAuthenticated() {
		t.Error("logout authenticated the engine somehow")
	}
}

func TestLogoutAuditedOnlyWhenAuthenticated(t *testing.T) {
	e := newTestEngine(t, nil)
	seedCoordinator(e)
	ctx := context.Background()

	_ = e.Logout(ctx) // no session, no event

	if _, err := e.MemberLogin(ctx, "9822222222", "member-pass"); err != nil {
		t.Fatalf("MemberLogin: %v", err)
	}
	if err := e.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	e.Close() // drain the audit pipeline
	events := e.sink.byType("logout")
	if len(events) != 1 {
		t.Fatalf("logout events = %d, want 1", len(events))
	}
	if events[0].UserID != "u-coord" {
		t.Errorf("logout event user = %q", events[0].UserID)
	}
}
