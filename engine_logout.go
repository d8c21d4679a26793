package portalauth

import "context"

// Logout ends the session: best-effort audit emission, then an unconditional
// credential wipe and in-memory reset. The epoch bump makes any login or
// monitor work still in flight discard its result instead of resurrecting
// the cleared session. Safe to call when already logged out.
func (e *Engine) Logout(ctx context.Context) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	session := e.CurrentSession()
	if session.IsAuthenticated {
		// Audit failures never block logout; the dispatcher is already
		// fire-and-forget.
		e.emitAudit(ctx, auditEventLogout, true, sessionUserID(session), session.AgencyID, session.Portal, nil, nil)
		e.metricInc(MetricLogout)
	}

	e.mu.Lock()
	e.epoch.Add(1)
	e.session = Session{}
	e.mu.Unlock()

	e.stopMonitor()

	return e.store.Clear(ctx)
}
