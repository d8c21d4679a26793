package portalauth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rojgarlink/portalauth/autherr"
	"github.com/rojgarlink/portalauth/credstore"
	"github.com/rojgarlink/portalauth/rbac"
)

func TestBuildRequiresBackend(t *testing.T) {
	if _, err := New().Build(); err == nil {
		t.Fatal("Build without backend should fail")
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Token.DefaultExpiry = 0
	if _, err := New().WithConfig(cfg).WithBackend(newMockBackend()).Build(); err == nil {
		t.Fatal("Build with zero DefaultExpiry should fail")
	}
}

func TestHydrateRestoresSession(t *testing.T) {
	e := newTestEngine(t, nil)
	seedOwner(e)
	ctx := context.Background()

	login, err := e.OwnerLogin(ctx, "9811111111", "owner-pass")
	if err != nil {
		t.Fatalf("OwnerLogin: %v", err)
	}

	// A second engine on the same store stands in for a page reload.
	reloaded, err := New().
		WithBackend(e.backend).
		WithClock(e.clock.Now).
		WithConfig(func() Config {
			cfg := defaultConfig()
			cfg.Monitor.Enabled = false
			return cfg
		}()).
		WithCredentialBackend(e.kv).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(reloaded.Close)

	session, err := reloaded.Hydrate(ctx)
	if err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if !session.IsAuthenticated {
		t.Fatal("hydrated session not authenticated")
	}
	if session.Role() != "owner" {
		t.Errorf("role = %q, want owner", session.Role())
	}
	if session.Portal != PortalOwner {
		t.Errorf("portal = %q, want owner", session.Portal)
	}
	if session.AgencyID != "ag-1" {
		t.Errorf("agency = %q, want ag-1", session.AgencyID)
	}
	if !session.TokenExpiration.Equal(login.ExpiresAt) {
		t.Errorf("expiration = %v, want %v", session.TokenExpiration, login.ExpiresAt)
	}
}

func TestHydrateEmptyStore(t *testing.T) {
	e := newTestEngine(t, nil)

	session, err := e.Hydrate(context.Background())
	if err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if session.IsAuthenticated {
		t.Fatal("empty store must hydrate to the unauthenticated session")
	}
}

func TestHydrateClearsStaleInMemorySession(t *testing.T) {
	e := newTestEngine(t, nil)
	seedAdmin(e)
	ctx := context.Background()

	if _, err := e.AdminLogin(ctx, "9800000001", "admin-pass"); err != nil {
		t.Fatalf("AdminLogin: %v", err)
	}
	// Another tab cleared the shared credential store.
	if err := e.Store().Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	session, err := e.Hydrate(ctx)
	if err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if session.IsAuthenticated || e.isAuthenticated() {
		t.Fatal("hydrate over a cleared store must reset the session")
	}
}

func TestCurrentSessionIsACopy(t *testing.T) {
	e := newTestEngine(t, nil)
	seedCoordinator(e)
	ctx := context.Background()

	if _, err := e.MemberLogin(ctx, "9822222222", "member-pass"); err != nil {
		t.Fatalf("MemberLogin: %v", err)
	}

	snap := e.CurrentSession()
	snap.User.Role = "tampered"
	if len(snap.Permissions) > 0 {
		snap.Permissions[0] = "tampered.perm"
	}

	fresh := e.CurrentSession()
	if fresh.User.Role == "tampered" {
		t.Error("mutating a snapshot user leaked into engine state")
	}
	for _, p := range fresh.Permissions {
		if p == "tampered.perm" {
			t.Error("mutating snapshot permissions leaked into engine state")
		}
	}
}

func TestHasPermissionUsesIssuedSet(t *testing.T) {
	e := newTestEngine(t, nil)
	seedCoordinator(e)
	ctx := context.Background()

	if e.HasPermission(rbac.PermInterviewsSchedule) {
		t.Error("unauthenticated engine must hold no permissions")
	}

	if _, err := e.MemberLogin(ctx, "9822222222", "member-pass"); err != nil {
		t.Fatalf("MemberLogin: %v", err)
	}

	if !e.HasPermission(rbac.PermInterviewsSchedule) {
		t.Error("coordinator should hold interviews.schedule")
	}
	if e.HasPermission(rbac.PermSettingsManage) {
		t.Error("coordinator must not hold settings.manage")
	}
}

func TestFeatureAndActionGuards(t *testing.T) {
	e := newTestEngine(t, nil)
	seedOwner(e)
	ctx := context.Background()

	if e.HasFeatureAccess(rbac.FeatureDashboard) {
		t.Error("unauthenticated session must see no features")
	}
	if items := e.AccessibleNavItems(); items != nil {
		t.Errorf("unauthenticated nav = %v, want nil", items)
	}

	if _, err := e.OwnerLogin(ctx, "9811111111", "owner-pass"); err != nil {
		t.Fatalf("OwnerLogin: %v", err)
	}

	if !e.HasFeatureAccess(rbac.FeatureSettings) {
		t.Error("owner should access settings")
	}
	if !e.CanPerformAction(rbac.FeatureJobs, rbac.ActionPublish) {
		t.Error("owner should publish jobs")
	}
	if e.HasFeatureAccess(rbac.FeatureAdminPanel) {
		t.Error("owner must not access the admin panel")
	}

	items := e.AccessibleNavItems()
	if len(items) == 0 {
		t.Fatal("owner nav should not be empty")
	}
	if items[0].Path != "/dashboard" {
		t.Errorf("first nav item = %q, want /dashboard", items[0].Path)
	}
}

func TestOverrideRoleRequiresDevMode(t *testing.T) {
	e := newTestEngine(t, nil)
	seedCoordinator(e)
	ctx := context.Background()

	if _, err := e.MemberLogin(ctx, "9822222222", "member-pass"); err != nil {
		t.Fatalf("MemberLogin: %v", err)
	}
	if err := e.OverrideRole(ctx, "manager"); !errors.Is(err, ErrRoleOverrideDisabled) {
		t.Fatalf("err = %v, want ErrRoleOverrideDisabled", err)
	}
}

func TestOverrideRoleSwapsRoleAndPermissions(t *testing.T) {
	e := newTestEngine(t, func(cfg *Config) {
		cfg.DevMode = true
	})
	seedCoordinator(e)
	ctx := context.Background()

	if err := e.OverrideRole(ctx, "manager"); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("override before login: err = %v, want ErrNotAuthenticated", err)
	}

	if _, err := e.MemberLogin(ctx, "9822222222", "member-pass"); err != nil {
		t.Fatalf("MemberLogin: %v", err)
	}
	if err := e.OverrideRole(ctx, "manager"); err != nil {
		t.Fatalf("OverrideRole: %v", err)
	}

	session := e.CurrentSession()
	if session.Role() != "manager" {
		t.Errorf("role = %q, want manager", session.Role())
	}
	if !e.HasPermission(rbac.PermJobsCreate) {
		t.Error("manager override should carry jobs.create")
	}
	if user := e.Store().User(ctx); user == nil || user.Role != "manager" {
		t.Errorf("persisted role = %+v, want manager", user)
	}
}

func TestRedirectPathPerPortal(t *testing.T) {
	tests := []struct {
		portal credstore.Portal
		want   string
	}{
		{credstore.PortalAdmin, "/login"},
		{credstore.PortalOwner, "/owner/login"},
		{credstore.PortalMember, "/member/login"},
	}
	for _, tt := range tests {
		t.Run(string(tt.portal), func(t *testing.T) {
			e := newTestEngine(t, nil)
			ctx := context.Background()
			if err := e.Store().SetLoginPortal(ctx, tt.portal); err != nil {
				t.Fatalf("SetLoginPortal: %v", err)
			}
			if got := e.RedirectPath(ctx); got != tt.want {
				t.Errorf("RedirectPath = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRedirectPathCarriesRequestedLocation(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx := WithRequestedLocation(context.Background(), "/jobs/42")

	got := e.RedirectPath(ctx)
	if got != "/member/login?redirect=/jobs/42" {
		t.Errorf("RedirectPath = %q", got)
	}
}

func TestHandleAuthErrorNotifiesAndRedirects(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx := context.Background()

	authErr := &deniedError{msg: "token rejected"}
	normalized, redirect := e.HandleAuthError(ctx, authErr, map[string]string{"source": "jobsApi"})
	if normalized == nil {
		t.Fatal("expected a normalized error")
	}
	if normalized.Type != autherr.TypeUnauthorized {
		t.Errorf("type = %q, want UNAUTHORIZED", normalized.Type)
	}
	if redirect != "/member/login" {
		t.Errorf("redirect = %q", redirect)
	}
	if e.notified.count() != 1 {
		t.Fatalf("notifications = %d, want 1", e.notified.count())
	}
}

func TestHandleAuthErrorNetworkDoesNotRedirect(t *testing.T) {
	e := newTestEngine(t, nil)

	normalized, redirect := e.HandleAuthError(context.Background(), errors.New("dial tcp: connection refused"), nil)
	if normalized == nil {
		t.Fatal("expected a normalized error")
	}
	if normalized.Type != autherr.TypeNetworkError {
		t.Errorf("type = %q, want NETWORK_ERROR", normalized.Type)
	}
	if redirect != "" {
		t.Errorf("redirect = %q, want empty (network failures keep the session)", redirect)
	}
	if e.notified.count() != 0 {
		t.Errorf("network failures must not notify, got %d", e.notified.count())
	}
}

func TestCreateAgencyRequiresAuthentication(t *testing.T) {
	e := newTestEngine(t, nil)

	_, err := e.CreateAgency(context.Background(), AgencyInput{Name: "Everest Overseas", LicenseNumber: "LIC-1"})
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}
}

func TestCreateAgencyUpdatesSessionAndStore(t *testing.T) {
	e := newTestEngine(t, nil)
	e.backend.seed("9833333333", account{
		otp: "444444",
		grant: CredentialGrant{
			Token:  "tok-new-owner",
			UserID: "u-new-owner",
			Role:   "agency_owner",
		},
	})
	ctx := context.Background()

	if _, err := e.VerifyOwner(ctx, "9833333333", "444444"); err != nil {
		t.Fatalf("VerifyOwner: %v", err)
	}

	agency, err := e.CreateAgency(ctx, AgencyInput{Name: "Everest Overseas", LicenseNumber: "LIC-204"})
	if err != nil {
		t.Fatalf("CreateAgency: %v", err)
	}
	if agency.ID == "" {
		t.Fatal("agency id empty")
	}

	session := e.CurrentSession()
	if session.AgencyID != agency.ID {
		t.Errorf("session agency = %q, want %q", session.AgencyID, agency.ID)
	}
	if got := e.Store().AgencyID(ctx); got != agency.ID {
		t.Errorf("stored agency = %q, want %q", got, agency.ID)
	}
	if user := e.Store().User(ctx); user == nil || user.AgencyID != agency.ID {
		t.Errorf("stored user agency = %+v", user)
	}
}

func TestCreateAgencyBackendFailure(t *testing.T) {
	e := newTestEngine(t, nil)
	seedOwner(e)
	ctx := context.Background()

	if _, err := e.OwnerLogin(ctx, "9811111111", "owner-pass"); err != nil {
		t.Fatalf("OwnerLogin: %v", err)
	}

	_, err := e.CreateAgency(ctx, AgencyInput{}) // backend rejects empty name
	if err == nil {
		t.Fatal("expected failure")
	}
	if strings.Contains(err.Error(), "not authenticated") {
		t.Errorf("backend failure must not masquerade as an auth failure: %v", err)
	}
	if !e.isAuthenticated() {
		t.Error("agency failure must not end the session")
	}
}

func TestSessionStartSurvivesReLogin(t *testing.T) {
	e := newTestEngine(t, nil)
	seedCoordinator(e)
	ctx := context.Background()

	if _, err := e.MemberLogin(ctx, "9822222222", "member-pass"); err != nil {
		t.Fatalf("MemberLogin: %v", err)
	}
	start1, ok := e.Store().SessionStart(ctx)
	if !ok {
		t.Fatal("session start missing after login")
	}

	e.clock.Advance(10 * time.Minute)
	if _, err := e.MemberLogin(ctx, "9822222222", "member-pass"); err != nil {
		t.Fatalf("re-login: %v", err)
	}
	start2, ok := e.Store().SessionStart(ctx)
	if !ok {
		t.Fatal("session start missing after re-login")
	}
	if !start2.Equal(start1) {
		t.Errorf("session start moved on re-login: %v -> %v", start1, start2)
	}
}
