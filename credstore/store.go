package credstore

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"sync"
	"time"
)

// Portal identifies one of the three login surfaces.
type Portal string

const (
	// PortalAdmin is the platform administration login surface.
	PortalAdmin Portal = "admin"
	// PortalOwner is the agency owner login surface.
	PortalOwner Portal = "owner"
	// PortalMember is the agency team member login surface and the default
	// when no portal has been recorded.
	PortalMember Portal = "member"
)

// Valid reports whether p is one of the three known portals.
func (p Portal) Valid() bool {
	switch p {
	case PortalAdmin, PortalOwner, PortalMember:
		return true
	}
	return false
}

// User is the persisted user record. The zero value is not meaningful; a nil
// *User means "no user stored".
type User struct {
	ID           string `json:"id"`
	Phone        string `json:"phone"`
	Role         string `json:"role"`
	SpecificRole string `json:"specificRole,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
	AgencyID     string `json:"agencyId,omitempty"`
	Active       bool   `json:"active"`
}

// Credential is the whole-record credential set written on a successful
// login or verify. SetCredential replaces all keys in one locked section so
// a concurrent reader never observes a partial write.
type Credential struct {
	Token       string
	ExpiresIn   time.Duration
	User        *User
	Permissions []string
	Portal      Portal
	AgencyID    string
}

const (
	keyToken           = "token"
	keyTokenExpiration = "token_expiration"
	keySessionStart    = "session_start"
	keyUser            = "user"
	keyPermissions     = "permissions"
	keyLoginPortal     = "login_portal"
	keyAgencyID        = "agency_id"
)

// credentialKeys is the exact key set Clear removes.
var credentialKeys = []string{
	keyToken,
	keyTokenExpiration,
	keySessionStart,
	keyUser,
	keyPermissions,
	keyLoginPortal,
	keyAgencyID,
}

const (
	// DefaultExpiry is the fallback token lifetime when the backend supplies
	// no expiry of its own.
	DefaultExpiry = 24 * time.Hour
	// RefreshWindow is the pre-expiry interval during which a token should be
	// proactively renewed.
	RefreshWindow = 5 * time.Minute
	// WarningWindow is the pre-expiry interval during which the user is
	// warned the session will end.
	WarningWindow = 10 * time.Minute
)

// Store persists the credential set for one session. All writes take a single
// mutex so each write is a last-writer-wins whole-record replacement; reads
// never return errors, only zero values and defaults.
type Store struct {
	mu                sync.Mutex
	backend           Backend
	now               func() time.Time
	defaultExpiry     time.Duration
	requireExpiration bool
}

// Option configures a [Store].
type Option func(*Store)

// WithClock overrides the store's time source. Tests use it to drive a
// virtual clock.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDefaultExpiry overrides the fallback token lifetime.
func WithDefaultExpiry(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.defaultExpiry = d
		}
	}
}

// WithRequireExpiration makes tokens without parsable expiration data count
// as expired. The permissive default exists for tokens issued before
// expiration tracking; integrators that have migrated should turn this on.
func WithRequireExpiration(require bool) Option {
	return func(s *Store) {
		s.requireExpiration = require
	}
}

// NewStore creates a [Store] on the given backend. A nil backend falls back
// to an in-process [MemoryBackend].
func NewStore(backend Backend, opts ...Option) *Store {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	s := &Store{
		backend:       backend,
		now:           time.Now,
		defaultExpiry: DefaultExpiry,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) get(ctx context.Context, key string) (string, bool) {
	v, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		log.Print("portalauth: credential read failed for " + key)
		return "", false
	}
	return v, ok
}

func (s *Store) set(ctx context.Context, key, value string) error {
	return s.backend.Set(ctx, key, value)
}

// SetToken stores the bearer token and its absolute expiration (now +
// expiresIn). expiresIn <= 0 uses the default expiry. The session-start
// timestamp is written once, on the first token of a session.
func (s *Store) SetToken(ctx context.Context, token string, expiresIn time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setTokenLocked(ctx, token, expiresIn)
}

func (s *Store) setTokenLocked(ctx context.Context, token string, expiresIn time.Duration) error {
	if expiresIn <= 0 {
		expiresIn = s.defaultExpiry
	}
	now := s.now()
	if err := s.set(ctx, keyToken, token); err != nil {
		return err
	}
	expiresAt := now.Add(expiresIn).UnixMilli()
	if err := s.set(ctx, keyTokenExpiration, strconv.FormatInt(expiresAt, 10)); err != nil {
		return err
	}
	if _, ok := s.get(ctx, keySessionStart); !ok {
		if err := s.set(ctx, keySessionStart, strconv.FormatInt(now.UnixMilli(), 10)); err != nil {
			return err
		}
	}
	return nil
}

// SetCredential writes the full credential set under one lock. On error the
// caller must treat the store as undefined and Clear it; the in-memory
// session it feeds is only swapped after a nil return.
func (s *Store) SetCredential(ctx context.Context, cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.setTokenLocked(ctx, cred.Token, cred.ExpiresIn); err != nil {
		return err
	}
	if err := s.setUserLocked(ctx, cred.User); err != nil {
		return err
	}
	if err := s.setPermissionsLocked(ctx, cred.Permissions); err != nil {
		return err
	}
	if err := s.setLoginPortalLocked(ctx, cred.Portal); err != nil {
		return err
	}
	if cred.AgencyID != "" {
		if err := s.set(ctx, keyAgencyID, cred.AgencyID); err != nil {
			return err
		}
	}
	return nil
}

// Token returns the stored bearer token, or "" when none is stored.
func (s *Store) Token(ctx context.Context) string {
	v, _ := s.get(ctx, keyToken)
	return v
}

// SetUser stores the user record as JSON. A nil user removes the key.
func (s *Store) SetUser(ctx context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setUserLocked(ctx, u)
}

func (s *Store) setUserLocked(ctx context.Context, u *User) error {
	if u == nil {
		return s.backend.Delete(ctx, keyUser)
	}
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.set(ctx, keyUser, string(data))
}

// User returns the stored user record. Missing or malformed data yields nil.
func (s *Store) User(ctx context.Context) *User {
	raw, ok := s.get(ctx, keyUser)
	if !ok || raw == "" {
		return nil
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		log.Print("portalauth: stored user record is malformed, ignoring")
		return nil
	}
	return &u
}

// SetPermissions stores the permission list as a JSON array.
func (s *Store) SetPermissions(ctx context.Context, perms []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setPermissionsLocked(ctx, perms)
}

func (s *Store) setPermissionsLocked(ctx context.Context, perms []string) error {
	if perms == nil {
		perms = []string{}
	}
	data, err := json.Marshal(perms)
	if err != nil {
		return err
	}
	return s.set(ctx, keyPermissions, string(data))
}

// Permissions returns the stored permission list. Missing or malformed data
// yields an empty slice.
func (s *Store) Permissions(ctx context.Context) []string {
	raw, ok := s.get(ctx, keyPermissions)
	if !ok || raw == "" {
		return []string{}
	}
	var perms []string
	if err := json.Unmarshal([]byte(raw), &perms); err != nil {
		log.Print("portalauth: stored permission list is malformed, ignoring")
		return []string{}
	}
	if perms == nil {
		return []string{}
	}
	return perms
}

// SetAgencyID stores the tenant/agency identifier.
func (s *Store) SetAgencyID(ctx context.Context, agencyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(ctx, keyAgencyID, agencyID)
}

// AgencyID returns the stored tenant/agency identifier, or "".
func (s *Store) AgencyID(ctx context.Context) string {
	v, _ := s.get(ctx, keyAgencyID)
	return v
}

// SetLoginPortal records which portal issued the current session. Invalid
// input is coerced to [PortalMember] with a logged warning, never an error.
func (s *Store) SetLoginPortal(ctx context.Context, p Portal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLoginPortalLocked(ctx, p)
}

func (s *Store) setLoginPortalLocked(ctx context.Context, p Portal) error {
	if !p.Valid() {
		log.Print("portalauth: invalid login portal " + strconv.Quote(string(p)) + ", defaulting to member")
		p = PortalMember
	}
	return s.set(ctx, keyLoginPortal, string(p))
}

// LoginPortal returns the portal that issued the current session, defaulting
// to [PortalMember] when unset or unrecognized.
func (s *Store) LoginPortal(ctx context.Context) Portal {
	raw, ok := s.get(ctx, keyLoginPortal)
	if !ok {
		return PortalMember
	}
	p := Portal(raw)
	if !p.Valid() {
		return PortalMember
	}
	return p
}

// TokenExpiration returns the absolute expiration instant, or false when no
// parsable expiration is stored.
func (s *Store) TokenExpiration(ctx context.Context) (time.Time, bool) {
	raw, ok := s.get(ctx, keyTokenExpiration)
	if !ok || raw == "" {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Print("portalauth: stored token expiration is malformed, ignoring")
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// SessionStart returns the instant the session was first established, or
// false when none is stored.
func (s *Store) SessionStart(ctx context.Context) (time.Time, bool) {
	raw, ok := s.get(ctx, keySessionStart)
	if !ok || raw == "" {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// IsTokenExpired reports whether a stored expiration instant has passed.
// Tokens with no parsable expiration count as not expired unless the store
// was built with [WithRequireExpiration].
func (s *Store) IsTokenExpired(ctx context.Context) bool {
	exp, ok := s.TokenExpiration(ctx)
	if !ok {
		return s.requireExpiration
	}
	return !exp.After(s.now())
}

// IsTokenValid reports whether a token is present and not expired.
func (s *Store) IsTokenValid(ctx context.Context) bool {
	if s.Token(ctx) == "" {
		return false
	}
	return !s.IsTokenExpired(ctx)
}

// TimeUntilExpiration returns the remaining token lifetime, floored at zero,
// or false when no expiration is stored.
func (s *Store) TimeUntilExpiration(ctx context.Context) (time.Duration, bool) {
	exp, ok := s.TokenExpiration(ctx)
	if !ok {
		return 0, false
	}
	remaining := exp.Sub(s.now())
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// ShouldRefreshToken reports whether the token is inside the refresh window:
// still valid but within [RefreshWindow] of expiring.
func (s *Store) ShouldRefreshToken(ctx context.Context) bool {
	remaining, ok := s.TimeUntilExpiration(ctx)
	if !ok {
		return false
	}
	return remaining > 0 && remaining <= RefreshWindow
}

// ShouldShowExpirationWarning reports whether the token is inside the
// warning window: still valid but within [WarningWindow] of expiring.
func (s *Store) ShouldShowExpirationWarning(ctx context.Context) bool {
	remaining, ok := s.TimeUntilExpiration(ctx)
	if !ok {
		return false
	}
	return remaining > 0 && remaining <= WarningWindow
}

// Clear removes the entire credential key set. Safe to call when nothing is
// stored.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Delete(ctx, credentialKeys...)
}
