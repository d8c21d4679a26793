package portalauth

import (
	"context"

	"github.com/google/uuid"

	"github.com/rojgarlink/portalauth/credstore"
	"github.com/rojgarlink/portalauth/rbac"
)

// eligibleForPortal enforces each portal's role policy. The returned
// [PortalAccessError] names the portal the account should use; callers
// surface it verbatim so a cross-portal attempt never reads like a bad
// password.
func eligibleForPortal(portal Portal, role rbac.Role) error {
	switch portal {
	case credstore.PortalAdmin:
		// Owners are rejected here explicitly: the designated owner account
		// must go through the owner portal even though it outranks staff.
		if role != rbac.RoleAdmin {
			return &PortalAccessError{Portal: portal, Role: string(role)}
		}
	case credstore.PortalOwner:
		if role != rbac.RoleOwner {
			return &PortalAccessError{Portal: portal, Role: string(role)}
		}
	default:
		if role == rbac.RoleAdmin || role == rbac.RoleOwner {
			return &PortalAccessError{Portal: portal, Role: string(role)}
		}
	}
	return nil
}

// grantRole resolves the effective raw role of a grant: the explicit role
// field wins, then the backend's userType tag, then the portal's default.
func grantRole(portal Portal, grant *CredentialGrant) string {
	if grant.Role != "" {
		return grant.Role
	}
	if grant.UserType != "" {
		return grant.UserType
	}
	switch portal {
	case credstore.PortalAdmin:
		return string(rbac.RoleAdmin)
	case credstore.PortalOwner:
		return string(rbac.RoleOwner)
	default:
		return string(rbac.RoleStaff)
	}
}

// commitGrant turns a backend grant into the authenticated session: portal
// eligibility, role normalization, permission derivation, one atomic
// credential write, then the in-memory swap. epoch is the value captured
// before the network call; if a logout intervened the grant is discarded.
func (e *Engine) commitGrant(ctx context.Context, epoch uint64, portal Portal, eventType string, grant *CredentialGrant) (*LoginResult, error) {
	if grant == nil || grant.Token == "" || grant.UserID == "" {
		return nil, ErrEmptyCredentialGrant
	}

	role := rbac.Normalize(grantRole(portal, grant))
	if err := eligibleForPortal(portal, role); err != nil {
		e.metricInc(MetricPortalRejected)
		e.emitAudit(ctx, eventType, false, grant.UserID, grant.AgencyID, portal, err, func() map[string]string {
			return map[string]string{"reason": "portal_ineligible", "role": string(role)}
		})
		return nil, err
	}

	user := &UserRecord{
		ID:          grant.UserID,
		Phone:       grant.Phone,
		Role:        string(role),
		DisplayName: grant.FullName,
		AgencyID:    grant.AgencyID,
		Active:      true,
	}
	perms := rbac.PermissionsForRole(user.Role)
	expiresIn := tokenExpiry(grant, e.config.Token.DefaultExpiry, e.now)

	e.mu.Lock()
	if e.epoch.Load() != epoch {
		e.mu.Unlock()
		e.metricInc(MetricStaleLoginDiscarded)
		e.emitAudit(ctx, auditEventStaleDiscarded, false, grant.UserID, grant.AgencyID, portal, ErrSessionSuperseded, nil)
		return nil, ErrSessionSuperseded
	}

	cred := credstore.Credential{
		Token:       grant.Token,
		ExpiresIn:   expiresIn,
		User:        user,
		Permissions: perms,
		Portal:      portal,
		AgencyID:    grant.AgencyID,
	}
	if err := e.store.SetCredential(ctx, cred); err != nil {
		// A half-written credential set must not be observable: wipe the
		// store and keep the in-memory session as it was.
		_ = e.store.Clear(ctx)
		e.mu.Unlock()
		e.emitAudit(ctx, eventType, false, grant.UserID, grant.AgencyID, portal, err, func() map[string]string {
			return map[string]string{"reason": "credential_write_failed"}
		})
		return nil, err
	}

	exp, hasExp := e.store.TokenExpiration(ctx)
	session := Session{
		ID:              uuid.NewString(),
		User:            user,
		IsAuthenticated: true,
		Permissions:     perms,
		Portal:          portal,
		AgencyID:        grant.AgencyID,
		TokenExpiration: exp,
		HasExpiration:   hasExp,
		IsTokenValid:    true,
	}
	e.session = session
	e.mu.Unlock()

	e.metricInc(successMetricFor(eventType))
	e.emitAudit(ctx, eventType, true, user.ID, user.AgencyID, portal, nil, func() map[string]string {
		return map[string]string{"role": user.Role}
	})
	e.startMonitor()

	return &LoginResult{
		Session:     copySession(session),
		Token:       grant.Token,
		ExpiresAt:   exp,
		Permissions: perms,
		HasAgency:   grant.HasAgency || grant.AgencyID != "",
	}, nil
}

func successMetricFor(eventType string) MetricID {
	switch eventType {
	case auditEventVerifySuccess:
		return MetricVerifySuccess
	default:
		return MetricLoginSuccess
	}
}

func (e *Engine) failedLogin(ctx context.Context, eventType string, portal Portal, err error, identifier string) {
	if eventType == auditEventVerifySuccess {
		e.metricInc(MetricVerifyFailure)
		eventType = auditEventVerifyFailure
	} else {
		e.metricInc(MetricLoginFailure)
		eventType = auditEventLoginFailure
	}
	e.emitAudit(ctx, eventType, false, "", "", portal, err, func() map[string]string {
		return map[string]string{"identifier": identifier}
	})
}
