package portalauth

import (
	"context"
	"strings"
	"testing"
	"time"
)

func loginCoordinator(t *testing.T, e *testEngine) {
	t.Helper()
	seedCoordinator(e)
	if _, err := e.MemberLogin(context.Background(), "9822222222", "member-pass"); err != nil {
		t.Fatalf("MemberLogin: %v", err)
	}
}

func TestMonitorTickNoOpWhenUnauthenticated(t *testing.T) {
	e := newTestEngine(t, nil)

	e.monitorTick(context.Background())

	if e.notified.count() != 0 {
		t.Errorf("notifications = %d, want 0", e.notified.count())
	}
}

func TestMonitorTickWarnsInsideWindow(t *testing.T) {
	e := newTestEngine(t, nil)
	loginCoordinator(t, e)
	ctx := context.Background()

	// 24h token: move to 5 minutes before expiry, inside the 10 minute
	// warning window.
	e.clock.Advance(24*time.Hour - 5*time.Minute)
	e.monitorTick(ctx)

	if e.notified.count() != 1 {
		t.Fatalf("notifications = %d, want 1", e.notified.count())
	}
	if got := e.notified.last(); got != "Your session will expire in 5 minutes. Please save your work." {
		t.Errorf("warning = %q", got)
	}
	if !e.isAuthenticated() {
		t.Error("warning tick must not log out")
	}
}

func TestMonitorTickWarningSingularMinute(t *testing.T) {
	e := newTestEngine(t, nil)
	loginCoordinator(t, e)

	e.clock.Advance(24*time.Hour - time.Minute)
	e.monitorTick(context.Background())

	if got := e.notified.last(); !strings.Contains(got, "1 minute.") {
		t.Errorf("warning = %q, want singular minute", got)
	}
	if got := e.notified.last(); strings.Contains(got, "minutes") {
		t.Errorf("warning = %q, must not pluralize one minute", got)
	}
}

func TestMonitorTickOutsideWarningWindowSilent(t *testing.T) {
	e := newTestEngine(t, nil)
	loginCoordinator(t, e)

	e.clock.Advance(24*time.Hour - 11*time.Minute)
	e.monitorTick(context.Background())

	if e.notified.count() != 0 {
		t.Errorf("notifications = %d, want 0 outside the warning window", e.notified.count())
	}
}

func TestMonitorTickExpiresSession(t *testing.T) {
	e := newTestEngine(t, nil)
	loginCoordinator(t, e)
	ctx := context.Background()

	e.clock.Advance(24*time.Hour + time.Second)
	e.monitorTick(ctx)

	if e.isAuthenticated() {
		t.Fatal("expired session still authenticated after tick")
	}
	if got := e.Store().Token(ctx); got != "" {
		t.Errorf("expired token survived: %q", got)
	}
	if e.notified.count() != 1 {
		t.Fatalf("notifications = %d, want exactly 1", e.notified.count())
	}
	if opts := e.notified.opts[0]; !opts.Sticky {
		t.Error("expiry notification should be sticky")
	}

	// A second tick after expiry must stay quiet.
	e.monitorTick(ctx)
	if e.notified.count() != 1 {
		t.Errorf("notifications after second tick = %d, want 1", e.notified.count())
	}
}

func TestMonitorTickRefreshesExpirationSnapshot(t *testing.T) {
	e := newTestEngine(t, nil)
	loginCoordinator(t, e)
	ctx := context.Background()

	before := e.CurrentSession()
	e.clock.Advance(time.Hour)
	e.monitorTick(ctx)

	after := e.CurrentSession()
	if !after.IsAuthenticated {
		t.Fatal("session lost on a healthy tick")
	}
	if !after.TokenExpiration.Equal(before.TokenExpiration) {
		t.Errorf("expiration drifted: %v -> %v", before.TokenExpiration, after.TokenExpiration)
	}
}

func TestCheckTokenExpirationHonorsMissingExpiration(t *testing.T) {
	e := newTestEngine(t, nil)
	loginCoordinator(t, e)
	ctx := context.Background()

	// Simulate a legacy credential set that has a token but no expiration.
	if err := e.kv.Delete(ctx, "token_expiration"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if e.CheckTokenExpiration(ctx) {
		t.Fatal("missing expiration must count as valid by default")
	}
	if !e.isAuthenticated() {
		t.Error("compat carve-out must keep the session")
	}
}

func TestCheckTokenExpirationStrictMode(t *testing.T) {
	e := newTestEngine(t, func(cfg *Config) {
		cfg.Token.RequireExpiration = true
	})
	loginCoordinator(t, e)
	ctx := context.Background()

	if err := e.kv.Delete(ctx, "token_expiration"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if !e.CheckTokenExpiration(ctx) {
		t.Fatal("strict mode must treat missing expiration as expired")
	}
	if e.isAuthenticated() {
		t.Error("strict-mode expiry must end the session")
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "1 minute"},
		{time.Minute, "1 minute"},
		{61 * time.Second, "2 minutes"},
		{5 * time.Minute, "5 minutes"},
		{9*time.Minute + 30*time.Second, "10 minutes"},
	}
	for _, tt := range tests {
		if got := formatMinutes(tt.d); got != tt.want {
			t.Errorf("formatMinutes(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestMonitorStartStopLifecycle(t *testing.T) {
	e := newTestEngine(t, func(cfg *Config) {
		cfg.Monitor.Enabled = true
		cfg.Monitor.Interval = 10 * time.Millisecond
	})
	loginCoordinator(t, e)

	e.monMu.Lock()
	running := e.monitor != nil
	e.monMu.Unlock()
	if !running {
		t.Fatal("monitor not started by login")
	}

	if err := e.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	e.monMu.Lock()
	running = e.monitor != nil
	e.monMu.Unlock()
	if running {
		t.Error("monitor still registered after logout")
	}
}
