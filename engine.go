package portalauth

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rojgarlink/portalauth/autherr"
	"github.com/rojgarlink/portalauth/credstore"
	"github.com/rojgarlink/portalauth/rbac"
)

// Engine defines a public type used by portalauth APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
// It is the composition root: every session transition — hydrate, login,
// verify, logout, expiry, override — funnels through an Engine method.
type Engine struct {
	config   Config
	store    *credstore.Store
	backend  Backend
	notifier *autherr.Notifier
	audit    *auditDispatcher
	metrics  *Metrics
	now      func() time.Time

	// epoch increments on logout. In-flight logins capture it at call start
	// and commit only if it is unchanged, so a stale response can never
	// resurrect a cleared session.
	epoch atomic.Uint64

	mu      sync.RWMutex
	session Session

	monMu   sync.Mutex
	monitor *monitor
}

// Close stops the background monitor and drains the audit pipeline.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.stopMonitor()
	if e.audit != nil {
		e.audit.Close()
	}
}

// Store exposes the credential store for hosts that need direct reads (for
// example attaching the bearer token to their own HTTP calls).
func (e *Engine) Store() *credstore.Store {
	return e.store
}

// Notifier exposes the debounced notifier so hosts can register UI callbacks.
func (e *Engine) Notifier() *autherr.Notifier {
	return e.notifier
}

// AuditDropped reports how many audit events were dropped under backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, userID, agencyID string, portal Portal, failure error, metadata func() map[string]string) {
	if e.audit == nil {
		return
	}
	event := AuditEvent{
		EventID:   uuid.NewString(),
		Timestamp: e.now(),
		EventType: eventType,
		UserID:    userID,
		AgencyID:  agencyID,
		Portal:    string(portal),
		IP:        clientIPFromContext(ctx),
		Success:   success,
	}
	if failure != nil {
		event.Error = failure.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}
	e.audit.Emit(ctx, event)
}

// CurrentSession returns a copy of the session snapshot. Reads taken while a
// login is in flight observe the pre-call state.
func (e *Engine) CurrentSession() Session {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return copySession(e.session)
}

func copySession(s Session) Session {
	out := s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	if s.Permissions != nil {
		out.Permissions = make([]string, len(s.Permissions))
		copy(out.Permissions, s.Permissions)
	}
	return out
}

func (e *Engine) isAuthenticated() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session.IsAuthenticated
}

// Hydrate reads the credential store once and rebuilds the in-memory session
// from it. It is the single entry point for page-reload restoration: a valid
// token plus a structurally valid user yields an authenticated session,
// anything else yields the empty one.
func (e *Engine) Hydrate(ctx context.Context) (Session, error) {
	if e == nil || e.store == nil {
		return Session{}, ErrEngineNotReady
	}

	user := e.store.User(ctx)
	if !e.store.IsTokenValid(ctx) || user == nil || user.ID == "" {
		e.metricInc(MetricHydrateEmpty)
		e.mu.Lock()
		e.session = Session{}
		e.mu.Unlock()
		return Session{}, nil
	}

	exp, hasExp := e.store.TokenExpiration(ctx)
	session := Session{
		ID:              uuid.NewString(),
		User:            user,
		IsAuthenticated: true,
		Permissions:     e.store.Permissions(ctx),
		Portal:          e.store.LoginPortal(ctx),
		AgencyID:        e.store.AgencyID(ctx),
		TokenExpiration: exp,
		HasExpiration:   hasExp,
		IsTokenValid:    true,
	}

	e.mu.Lock()
	e.session = session
	e.mu.Unlock()

	e.metricInc(MetricHydrateSuccess)
	e.startMonitor()
	return copySession(session), nil
}

// CheckTokenExpiration refreshes the session's cached expiration fields from
// the store and, when the token has expired, performs the single automatic
// expiry logout. It reports whether the session expired on this check.
func (e *Engine) CheckTokenExpiration(ctx context.Context) bool {
	if !e.isAuthenticated() {
		return false
	}

	if e.store.IsTokenExpired(ctx) {
		e.expireSession(ctx)
		return true
	}

	exp, hasExp := e.store.TokenExpiration(ctx)
	valid := e.store.IsTokenValid(ctx)

	e.mu.Lock()
	if e.session.IsAuthenticated {
		e.session.TokenExpiration = exp
		e.session.HasExpiration = hasExp
		e.session.IsTokenValid = valid
	}
	e.mu.Unlock()
	return false
}

// expireSession is the monitor-driven expiry path: one notification, one
// logout, no error thrown into unrelated code.
func (e *Engine) expireSession(ctx context.Context) {
	session := e.CurrentSession()
	e.metricInc(MetricSessionExpired)
	e.emitAudit(ctx, auditEventSessionExpired, true, sessionUserID(session), session.AgencyID, session.Portal, nil, nil)

	msg := autherr.MessageFor(autherr.TypeTokenExpired)
	if !e.notifier.Notify(msg.Text, autherr.NotifyOptions{Type: autherr.TypeTokenExpired, Severity: "error", Sticky: true}) {
		e.metricInc(MetricNotificationSuppressed)
	}

	_ = e.Logout(ctx)
}

// RedirectPath returns the login route for the portal that issued the
// current session, so expired or missing-token conditions land the user on
// the right surface. The originally requested location travels in ctx via
// [WithRequestedLocation] and is appended as a redirect query when present.
func (e *Engine) RedirectPath(ctx context.Context) string {
	path := autherr.RedirectPath(string(e.store.LoginPortal(ctx)))
	if location := RequestedLocationFromContext(ctx); location != "" {
		return path + "?redirect=" + location
	}
	return path
}

// HandleAuthError normalizes a failure observed by the host, surfaces the
// debounced user message for non-network kinds, and returns the normalized
// error together with the redirect path the host should send the user to for
// auth kinds.
func (e *Engine) HandleAuthError(ctx context.Context, err error, errContext map[string]string) (*autherr.Error, string) {
	normalized := e.notifier.HandleAuthError(err, errContext)
	if normalized == nil {
		return nil, ""
	}
	if normalized.Type == autherr.TypeNetworkError {
		return normalized, ""
	}
	return normalized, e.RedirectPath(ctx)
}

// HasPermission reports whether the current session holds the permission
// tag. It consults the permission set cached at issuance, not the live
// tables, so a mid-session policy edit does not silently change access.
func (e *Engine) HasPermission(perm string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.session.IsAuthenticated {
		return false
	}
	for _, p := range e.session.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// HasFeatureAccess reports whether the current session's role may open the
// feature.
func (e *Engine) HasFeatureAccess(feature rbac.Feature) bool {
	session := e.CurrentSession()
	if !session.IsAuthenticated {
		return false
	}
	return rbac.HasFeatureAccess(session.Role(), feature)
}

// CanPerformAction reports whether the current session's role may perform
// the action within the feature.
func (e *Engine) CanPerformAction(feature rbac.Feature, action rbac.Action) bool {
	session := e.CurrentSession()
	if !session.IsAuthenticated {
		return false
	}
	return rbac.CanPerformAction(session.Role(), feature, action)
}

// AccessibleNavItems returns the navigation entries the current session may
// see, in canonical order. Unauthenticated sessions see none.
func (e *Engine) AccessibleNavItems() []rbac.NavItem {
	session := e.CurrentSession()
	if !session.IsAuthenticated {
		return nil
	}
	return rbac.AccessibleNavItems(session.Role())
}

// OverrideRole swaps the session role and its derived permissions in place.
// It exists for development and testing of role-gated UI and refuses to run
// unless [Config.DevMode] is set.
func (e *Engine) OverrideRole(ctx context.Context, rawRole string) error {
	if !e.config.DevMode {
		return ErrRoleOverrideDisabled
	}
	if !e.isAuthenticated() {
		return ErrNotAuthenticated
	}

	role := string(rbac.Normalize(rawRole))
	perms := rbac.PermissionsForRole(role)

	e.mu.Lock()
	user := *e.session.User
	previous := user.Role
	user.Role = role
	e.session.User = &user
	e.session.Permissions = perms
	e.mu.Unlock()

	if err := e.store.SetUser(ctx, &user); err != nil {
		return err
	}
	if err := e.store.SetPermissions(ctx, perms); err != nil {
		return err
	}

	e.metricInc(MetricRoleOverride)
	e.emitAudit(ctx, auditEventRoleOverride, true, user.ID, user.AgencyID, e.store.LoginPortal(ctx), nil, func() map[string]string {
		return map[string]string{
			"previousRole": previous,
			"newRole":      role,
		}
	})
	return nil
}

func sessionUserID(s Session) string {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}
