package portalauth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rojgarlink/portalauth/autherr"
	"github.com/rojgarlink/portalauth/credstore"
)

// virtualClock is a settable time source shared by the engine, the store and
// the notifier in tests.
type virtualClock struct {
	mu sync.Mutex
	t  time.Time
}

func newVirtualClock() *virtualClock {
	return &virtualClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *virtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *virtualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// account seeds one credential grant in the mock backend.
type account struct {
	password string
	otp      string
	grant    CredentialGrant
}

// mockBackend implements Backend against an in-memory account table. Every
// lookup failure surfaces as a 401-carrying error the way the HTTP client
// reports one.
type mockBackend struct {
	mu       sync.Mutex
	accounts map[string]account

	// err, when set, fails every call. Used for network fault injection.
	err error

	// blocked, when non-nil, is closed to release in-flight calls. Used to
	// interleave logout with a slow login response.
	blocked chan struct{}

	calls []string
}

func newMockBackend() *mockBackend {
	return &mockBackend{accounts: map[string]account{}}
}

func (b *mockBackend) seed(identifier string, acct account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts[identifier] = acct
}

type deniedError struct{ msg string }

func (e *deniedError) Error() string   { return e.msg }
func (e *deniedError) HTTPStatus() int { return 401 }

func (b *mockBackend) gate(name string) error {
	b.mu.Lock()
	b.calls = append(b.calls, name)
	err := b.err
	blocked := b.blocked
	b.mu.Unlock()
	if blocked != nil {
		<-blocked
	}
	return err
}

func (b *mockBackend) lookupPassword(name, identifier, password string) (*CredentialGrant, error) {
	if err := b.gate(name); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	acct, ok := b.accounts[identifier]
	if !ok || acct.password != password {
		return nil, &deniedError{msg: "invalid credentials"}
	}
	grant := acct.grant
	return &grant, nil
}

func (b *mockBackend) lookupOTP(name, identifier, otp string) (*CredentialGrant, error) {
	if err := b.gate(name); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	acct, ok := b.accounts[identifier]
	if !ok || acct.otp == "" || acct.otp != otp {
		return nil, &deniedError{msg: "invalid or expired code"}
	}
	grant := acct.grant
	return &grant, nil
}

func (b *mockBackend) challenge(name, identifier string) (*OTPChallenge, error) {
	if err := b.gate(name); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	acct, ok := b.accounts[identifier]
	if !ok {
		return nil, &deniedError{msg: "unknown account"}
	}
	return &OTPChallenge{DevOTP: acct.otp}, nil
}

func (b *mockBackend) LoginStart(_ context.Context, phone string) (*OTPChallenge, error) {
	return b.challenge("LoginStart", phone)
}

func (b *mockBackend) LoginVerify(_ context.Context, phone, otp string) (*CredentialGrant, error) {
	return b.lookupOTP("LoginVerify", phone, otp)
}

func (b *mockBackend) AdminLogin(_ context.Context, identifier, password string) (*CredentialGrant, error) {
	return b.lookupPassword("AdminLogin", identifier, password)
}

func (b *mockBackend) RegisterOwner(_ context.Context, fullName, phone string) (*OTPChallenge, error) {
	return b.challenge("RegisterOwner", phone)
}

func (b *mockBackend) VerifyOwner(_ context.Context, phone, otp string) (*CredentialGrant, error) {
	return b.lookupOTP("VerifyOwner", phone, otp)
}

func (b *mockBackend) LoginStartOwner(_ context.Context, phone string) (*OTPChallenge, error) {
	return b.challenge("LoginStartOwner", phone)
}

func (b *mockBackend) LoginVerifyOwner(_ context.Context, phone, otp string) (*CredentialGrant, error) {
	return b.lookupOTP("LoginVerifyOwner", phone, otp)
}

func (b *mockBackend) OwnerLogin(_ context.Context, identifier, password string) (*CredentialGrant, error) {
	return b.lookupPassword("OwnerLogin", identifier, password)
}

func (b *mockBackend) MemberLoginStart(_ context.Context, phone string) (*OTPChallenge, error) {
	return b.challenge("MemberLoginStart", phone)
}

func (b *mockBackend) MemberLoginVerify(_ context.Context, phone, otp string) (*CredentialGrant, error) {
	return b.lookupOTP("MemberLoginVerify", phone, otp)
}

func (b *mockBackend) MemberLogin(_ context.Context, phone, password string) (*CredentialGrant, error) {
	return b.lookupPassword("MemberLogin", phone, password)
}

func (b *mockBackend) CreateAgency(_ context.Context, token string, input AgencyInput) (*Agency, error) {
	if err := b.gate("CreateAgency"); err != nil {
		return nil, err
	}
	if token == "" {
		return nil, &deniedError{msg: "missing bearer token"}
	}
	if input.Name == "" {
		return nil, errors.New("agency name required")
	}
	return &Agency{ID: "ag-" + input.LicenseNumber, LicenseNumber: input.LicenseNumber}, nil
}

// notifyRecorder captures delivered notifications.
type notifyRecorder struct {
	mu       sync.Mutex
	messages []string
	opts     []autherr.NotifyOptions
}

func (r *notifyRecorder) callback(message string, opts autherr.NotifyOptions) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	r.opts = append(r.opts, opts)
}

func (r *notifyRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

func (r *notifyRecorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return ""
	}
	return r.messages[len(r.messages)-1]
}

// collectSink records audit events synchronously.
type collectSink struct {
	mu     sync.Mutex
	events []AuditEvent
}

func (s *collectSink) Emit(_ context.Context, event AuditEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *collectSink) byType(eventType string) []AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []AuditEvent
	for _, e := range s.events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

type testEngine struct {
	*Engine
	backend  *mockBackend
	kv       *credstore.MemoryBackend
	clock    *virtualClock
	notified *notifyRecorder
	sink     *collectSink
}

// newTestEngine builds an engine on a memory credential store with a virtual
// clock, an audit collector, and the background monitor disabled so tests
// drive ticks explicitly.
func newTestEngine(t *testing.T, mutate func(*Config)) *testEngine {
	t.Helper()

	backend := newMockBackend()
	kv := credstore.NewMemoryBackend()
	clock := newVirtualClock()
	notified := &notifyRecorder{}
	sink := &collectSink{}

	cfg := defaultConfig()
	cfg.Monitor.Enabled = false
	cfg.Audit.Enabled = true
	if mutate != nil {
		mutate(&cfg)
	}

	engine, err := New().
		WithConfig(cfg).
		WithBackend(backend).
		WithCredentialBackend(kv).
		WithClock(clock.Now).
		WithAuditSink(sink).
		WithNotifyCallback(notified.callback).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(engine.Close)

	return &testEngine{
		Engine:   engine,
		backend:  backend,
		kv:       kv,
		clock:    clock,
		notified: notified,
		sink:     sink,
	}
}

func seedAdmin(e *testEngine) {
	e.backend.seed("9800000001", account{
		password: "admin-pass",
		otp:      "111111",
		grant: CredentialGrant{
			Token:    "tok-admin",
			UserID:   "u-admin",
			Role:     "admin",
			Phone:    "9800000001",
			FullName: "Platform Admin",
		},
	})
}

func seedOwner(e *testEngine) {
	e.backend.seed("9811111111", account{
		password: "owner-pass",
		otp:      "222222",
		grant: CredentialGrant{
			Token:     "tok-owner",
			UserID:    "u-owner",
			Role:      "agency_owner",
			Phone:     "9811111111",
			FullName:  "Agency Owner",
			AgencyID:  "ag-1",
			HasAgency: true,
		},
	})
}

func seedCoordinator(e *testEngine) {
	e.backend.seed("9822222222", account{
		password: "member-pass",
		otp:      "333333",
		grant: CredentialGrant{
			Token:    "tok-member",
			UserID:   "u-coord",
			Role:     "coordinator",
			Phone:    "9822222222",
			FullName: "Field Coordinator",
			AgencyID: "ag-1",
		},
	})
}
