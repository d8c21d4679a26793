package portalauth

import (
	"context"

	"github.com/rojgarlink/portalauth/credstore"
)

// AdminLoginStart begins the admin OTP flow. No session state changes until
// the matching [Engine.AdminLoginVerify] succeeds.
func (e *Engine) AdminLoginStart(ctx context.Context, phone string) (*OTPChallenge, error) {
	if e == nil || e.backend == nil {
		return nil, ErrEngineNotReady
	}
	return e.backend.LoginStart(ctx, phone)
}

// AdminLoginVerify completes the admin OTP flow. On success the full
// credential set is written atomically and the session becomes authenticated
// under the admin portal.
func (e *Engine) AdminLoginVerify(ctx context.Context, phone, otp string) (*LoginResult, error) {
	if e == nil || e.backend == nil {
		return nil, ErrEngineNotReady
	}

	epoch := e.epoch.Load()
	grant, err := e.backend.LoginVerify(ctx, phone, otp)
	if err != nil {
		e.failedLogin(ctx, auditEventVerifySuccess, credstore.PortalAdmin, err, phone)
		return nil, err
	}
	return e.commitGrant(ctx, epoch, credstore.PortalAdmin, auditEventVerifySuccess, grant)
}

// AdminLogin is the admin portal's password flow. Accounts whose role is not
// admin are rejected with a portal-specific access error; in particular the
// designated owner account is refused here so owners always enter through
// the owner portal.
func (e *Engine) AdminLogin(ctx context.Context, identifier, password string) (*LoginResult, error) {
	if e == nil || e.backend == nil {
		return nil, ErrEngineNotReady
	}

	epoch := e.epoch.Load()
	grant, err := e.backend.AdminLogin(ctx, identifier, password)
	if err != nil {
		e.failedLogin(ctx, auditEventLoginSuccess, credstore.PortalAdmin, err, identifier)
		return nil, err
	}
	return e.commitGrant(ctx, epoch, credstore.PortalAdmin, auditEventLoginSuccess, grant)
}
