package portalauth

import (
	"errors"
	"fmt"

	"github.com/rojgarlink/portalauth/credstore"
)

var (
	// ErrNotAuthenticated is an exported constant or variable used by the portal engine.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrEngineNotReady is an exported constant or variable used by the portal engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrSessionSuperseded is an exported constant or variable used by the portal engine.
	ErrSessionSuperseded = errors.New("session superseded before login completed")
	// ErrRoleOverrideDisabled is an exported constant or variable used by the portal engine.
	ErrRoleOverrideDisabled = errors.New("role override is only available in dev mode")
	// ErrEmptyCredentialGrant is an exported constant or variable used by the portal engine.
	ErrEmptyCredentialGrant = errors.New("backend returned an empty credential grant")
)

// PortalAccessError is returned when an account authenticates successfully
// but is not eligible for the portal it tried to enter. The message names the
// portal the account should use instead; callers must surface it verbatim
// rather than collapsing it into "invalid credentials".
type PortalAccessError struct {
	Portal Portal
	Role   string
}

// Error implements the error interface with portal-specific wording.
func (e *PortalAccessError) Error() string {
	switch e.Portal {
	case credstore.PortalAdmin:
		return fmt.Sprintf("Access Denied: this portal is for platform administrators only. Your account role is %q; agency accounts must use the owner or member portal.", e.Role)
	case credstore.PortalOwner:
		return fmt.Sprintf("Access Denied: this portal is for agency owners only. Your account role is %q; please use the portal that matches your account.", e.Role)
	default:
		return fmt.Sprintf("Access Denied: this portal is for agency team members only. Your account role is %q; administrators and owners must use their own portal.", e.Role)
	}
}
