package portalauth

import (
	"context"
	"time"

	"github.com/rojgarlink/portalauth/credstore"
)

// Portal identifies one of the three login surfaces.
type Portal = credstore.Portal

const (
	// PortalAdmin is an exported constant used by the portal engine.
	PortalAdmin = credstore.PortalAdmin
	// PortalOwner is an exported constant used by the portal engine.
	PortalOwner = credstore.PortalOwner
	// PortalMember is an exported constant used by the portal engine.
	PortalMember = credstore.PortalMember
)

// UserRecord is the persisted user record carried in the session.
type UserRecord = credstore.User

// Session is the authenticated-state snapshot exposed by
// [Engine.CurrentSession]. It is a value: callers can hold it without
// observing later transitions.
type Session struct {
	ID              string
	User            *UserRecord
	IsAuthenticated bool
	Permissions     []string
	Portal          Portal
	AgencyID        string
	TokenExpiration time.Time
	HasExpiration   bool
	IsTokenValid    bool
}

// Role returns the session user's raw role, or "" when unauthenticated.
func (s Session) Role() string {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// OTPChallenge is returned by the start half of an OTP flow. DevOTP is only
// populated by non-production backends.
type OTPChallenge struct {
	DevOTP string
}

// CredentialGrant is the normalized success payload of every login, verify,
// and registration call at the network boundary.
type CredentialGrant struct {
	Token     string
	UserID    string
	AgencyID  string
	UserType  string
	Role      string
	Phone     string
	FullName  string
	ExpiresIn time.Duration
	HasAgency bool
}

// AgencyInput is the provisioning payload for [Engine.CreateAgency].
type AgencyInput struct {
	Name          string
	LicenseNumber string
	Address       string
	District      string
	ContactPhone  string
}

// Agency is the provisioning result of [Engine.CreateAgency].
type Agency struct {
	ID            string
	LicenseNumber string
}

// LoginResult is returned by every successful login or verify operation. The
// credential set it describes has already been persisted and the in-memory
// session swapped by the time the caller sees it.
type LoginResult struct {
	Session     Session
	Token       string
	ExpiresAt   time.Time
	Permissions []string
	HasAgency   bool
}

// Backend is the network boundary. Implementations perform the actual HTTP
// calls ([httpapi.Client]) or stand in for them in tests. Every method maps
// one backend contract; transport details never leak past this interface.
type Backend interface {
	// Admin portal.
	LoginStart(ctx context.Context, phone string) (*OTPChallenge, error)
	LoginVerify(ctx context.Context, phone, otp string) (*CredentialGrant, error)
	AdminLogin(ctx context.Context, identifier, password string) (*CredentialGrant, error)

	// Owner portal.
	RegisterOwner(ctx context.Context, fullName, phone string) (*OTPChallenge, error)
	VerifyOwner(ctx context.Context, phone, otp string) (*CredentialGrant, error)
	LoginStartOwner(ctx context.Context, phone string) (*OTPChallenge, error)
	LoginVerifyOwner(ctx context.Context, phone, otp string) (*CredentialGrant, error)
	OwnerLogin(ctx context.Context, identifier, password string) (*CredentialGrant, error)

	// Member portal.
	MemberLoginStart(ctx context.Context, phone string) (*OTPChallenge, error)
	MemberLoginVerify(ctx context.Context, phone, otp string) (*CredentialGrant, error)
	MemberLogin(ctx context.Context, phone, password string) (*CredentialGrant, error)

	// Agency provisioning. Requires the bearer token of an authenticated
	// session.
	CreateAgency(ctx context.Context, token string, input AgencyInput) (*Agency, error)
}
