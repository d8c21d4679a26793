package portalauth

import (
	"context"

	"github.com/rojgarlink/portalauth/credstore"
)

// RegisterOwner begins owner onboarding: the backend records the pending
// registration and issues an OTP to the phone. No session state changes.
func (e *Engine) RegisterOwner(ctx context.Context, fullName, phone string) (*OTPChallenge, error) {
	if e == nil || e.backend == nil {
		return nil, ErrEngineNotReady
	}

	challenge, err := e.backend.RegisterOwner(ctx, fullName, phone)
	if err != nil {
		return nil, err
	}
	e.emitAudit(ctx, auditEventRegisterOwner, true, "", "", credstore.PortalOwner, nil, func() map[string]string {
		return map[string]string{"phone": phone}
	})
	return challenge, nil
}

// VerifyOwner completes owner onboarding, authenticating the new owner under
// the owner portal. The resulting session may not yet have an agency;
// [LoginResult.HasAgency] tells the host whether to route into agency
// provisioning.
func (e *Engine) VerifyOwner(ctx context.Context, phone, otp string) (*LoginResult, error) {
	if e == nil || e.backend == nil {
		return nil, ErrEngineNotReady
	}

	epoch := e.epoch.Load()
	grant, err := e.backend.VerifyOwner(ctx, phone, otp)
	if err != nil {
		e.failedLogin(ctx, auditEventVerifySuccess, credstore.PortalOwner, err, phone)
		return nil, err
	}
	return e.commitGrant(ctx, epoch, credstore.PortalOwner, auditEventVerifySuccess, grant)
}

// OwnerLoginStart begins the owner OTP flow.
func (e *Engine) OwnerLoginStart(ctx context.Context, phone string) (*OTPChallenge, error) {
	if e == nil || e.backend == nil {
		return nil, ErrEngineNotReady
	}
	return e.backend.LoginStartOwner(ctx, phone)
}

// OwnerLoginVerify completes the owner OTP flow.
func (e *Engine) OwnerLoginVerify(ctx context.Context, phone, otp string) (*LoginResult, error) {
	if e == nil || e.backend == nil {
		return nil, ErrEngineNotReady
	}

	epoch := e.epoch.Load()
	grant, err := e.backend.LoginVerifyOwner(ctx, phone, otp)
	if err != nil {
		e.failedLogin(ctx, auditEventVerifySuccess, credstore.PortalOwner, err, phone)
		return nil, err
	}
	return e.commitGrant(ctx, epoch, credstore.PortalOwner, auditEventVerifySuccess, grant)
}

// OwnerLogin is the owner portal's password flow. Non-owner accounts are
// rejected with a portal-specific access error.
func (e *Engine) OwnerLogin(ctx context.Context, identifier, password string) (*LoginResult, error) {
	if e == nil || e.backend == nil {
		return nil, ErrEngineNotReady
	}

	epoch := e.epoch.Load()
	grant, err := e.backend.OwnerLogin(ctx, identifier, password)
	if err != nil {
		e.failedLogin(ctx, auditEventLoginSuccess, credstore.PortalOwner, err, identifier)
		return nil, err
	}
	return e.commitGrant(ctx, epoch, credstore.PortalOwner, auditEventLoginSuccess, grant)
}
