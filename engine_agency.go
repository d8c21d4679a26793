package portalauth

import "context"

// CreateAgency provisions the agency for a freshly registered owner. Calling
// it without an authenticated session is a programming error and fails fast
// with [ErrNotAuthenticated]. On success the agency id is persisted into the
// credential set and reflected on the in-memory session.
func (e *Engine) CreateAgency(ctx context.Context, input AgencyInput) (*Agency, error) {
	if e == nil || e.backend == nil {
		return nil, ErrEngineNotReady
	}
	if !e.isAuthenticated() {
		return nil, ErrNotAuthenticated
	}

	token := e.store.Token(ctx)
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	agency, err := e.backend.CreateAgency(ctx, token, input)
	if err != nil {
		e.metricInc(MetricAgencyCreationFailure)
		session := e.CurrentSession()
		e.emitAudit(ctx, auditEventAgencyFailure, false, sessionUserID(session), "", session.Portal, err, func() map[string]string {
			return map[string]string{"name": input.Name}
		})
		return nil, err
	}

	if err := e.store.SetAgencyID(ctx, agency.ID); err != nil {
		// The agency exists server-side; a persistence hiccup here must not
		// fail the provisioning call. Hydrate will repair on next load.
		e.emitAudit(ctx, auditEventAgencyCreated, true, "", agency.ID, e.store.LoginPortal(ctx), err, nil)
	}

	e.mu.Lock()
	if e.session.IsAuthenticated {
		e.session.AgencyID = agency.ID
		if e.session.User != nil {
			user := *e.session.User
			user.AgencyID = agency.ID
			e.session.User = &user
			_ = e.store.SetUser(ctx, &user)
		}
	}
	session := copySession(e.session)
	e.mu.Unlock()

	e.metricInc(MetricAgencyCreated)
	e.emitAudit(ctx, auditEventAgencyCreated, true, sessionUserID(session), agency.ID, session.Portal, nil, func() map[string]string {
		return map[string]string{"licenseNumber": agency.LicenseNumber}
	})
	return agency, nil
}
