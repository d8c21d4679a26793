package portalauth

import (
	"context"

	"github.com/rojgarlink/portalauth/credstore"
)

// MemberLoginStart begins the member OTP flow.
func (e *Engine) MemberLoginStart(ctx context.Context, phone string) (*OTPChallenge, error) {
	if e == nil || e.backend == nil {
		return nil, ErrEngineNotReady
	}
	return e.backend.MemberLoginStart(ctx, phone)
}

// MemberLoginVerify completes the member OTP flow.
func (e *Engine) MemberLoginVerify(ctx context.Context, phone, otp string) (*LoginResult, error) {
	if e == nil || e.backend == nil {
		return nil, ErrEngineNotReady
	}

	epoch := e.epoch.Load()
	grant, err := e.backend.MemberLoginVerify(ctx, phone, otp)
	if err != nil {
		e.failedLogin(ctx, auditEventVerifySuccess, credstore.PortalMember, err, phone)
		return nil, err
	}
	return e.commitGrant(ctx, epoch, credstore.PortalMember, auditEventVerifySuccess, grant)
}

// MemberLogin is the member portal's password flow, the legacy path for
// agency team members. Admin and owner accounts are rejected with a
// portal-specific access error referencing the team member portal.
func (e *Engine) MemberLogin(ctx context.Context, phone, password string) (*LoginResult, error) {
	if e == nil || e.backend == nil {
		return nil, ErrEngineNotReady
	}

	epoch := e.epoch.Load()
	grant, err := e.backend.MemberLogin(ctx, phone, password)
	if err != nil {
		e.failedLogin(ctx, auditEventLoginSuccess, credstore.PortalMember, err, phone)
		return nil, err
	}
	return e.commitGrant(ctx, epoch, credstore.PortalMember, auditEventLoginSuccess, grant)
}
