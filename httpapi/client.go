package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	portalauth "github.com/rojgarlink/portalauth"
)

// DefaultTimeout bounds requests when the caller supplies no http.Client.
const DefaultTimeout = 15 * time.Second

// APIError is a non-2xx response from the platform API. It carries the HTTP
// status so the error classifier can distinguish authentication failures
// from everything else.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error describes the error operation and its observable behavior.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api request failed with status %d", e.StatusCode)
}

// HTTPStatus returns the response status code.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// Client implements the engine's Backend interface against the recruitment
// platform HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption configures a [Client].
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient creates a [Client] rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

/*
====================================
WIRE SHAPES
====================================
*/

type otpStartRequest struct {
	Phone    string `json:"phone"`
	FullName string `json:"full_name,omitempty"`
}

type otpVerifyRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

type passwordLoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type otpStartResponse struct {
	DevOTP string `json:"dev_otp,omitempty"`
}

type grantResponse struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	AgencyID  string `json:"agency_id,omitempty"`
	UserType  string `json:"user_type,omitempty"`
	Role      string `json:"role,omitempty"`
	Phone     string `json:"phone,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	ExpiresIn int64  `json:"expires_in,omitempty"` // seconds
	HasAgency bool   `json:"has_agency,omitempty"`
}

type agencyRequest struct {
	Name          string `json:"name"`
	LicenseNumber string `json:"license_number"`
	Address       string `json:"address,omitempty"`
	District      string `json:"district,omitempty"`
	ContactPhone  string `json:"contact_phone,omitempty"`
}

type agencyResponse struct {
	ID            string `json:"id"`
	LicenseNumber string `json:"license_number"`
}

type errorResponse struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (g *grantResponse) grant() *portalauth.CredentialGrant {
	return &portalauth.CredentialGrant{
		Token:     g.Token,
		UserID:    g.UserID,
		AgencyID:  g.AgencyID,
		UserType:  g.UserType,
		Role:      g.Role,
		Phone:     g.Phone,
		FullName:  g.FullName,
		ExpiresIn: time.Duration(g.ExpiresIn) * time.Second,
		HasAgency: g.HasAgency,
	}
}

/*
====================================
TRANSPORT
====================================
*/

func (c *Client) post(ctx context.Context, path, token string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("httpapi: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("httpapi: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// url.Error implements net.Error; keep it reachable for the
		// network classifier.
		return fmt.Errorf("httpapi: %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("httpapi: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var wire errorResponse
		if json.Unmarshal(raw, &wire) == nil {
			apiErr.Code = wire.Code
			apiErr.Message = wire.Message
			if apiErr.Message == "" {
				apiErr.Message = wire.Error
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("httpapi: decode response: %w", err)
	}
	return nil
}

func (c *Client) challenge(ctx context.Context, path string, body any) (*portalauth.OTPChallenge, error) {
	var wire otpStartResponse
	if err := c.post(ctx, path, "", body, &wire); err != nil {
		return nil, err
	}
	return &portalauth.OTPChallenge{DevOTP: wire.DevOTP}, nil
}

func (c *Client) login(ctx context.Context, path string, body any) (*portalauth.CredentialGrant, error) {
	var wire grantResponse
	if err := c.post(ctx, path, "", body, &wire); err != nil {
		return nil, err
	}
	return wire.grant(), nil
}

/*
====================================
ADMIN PORTAL
====================================
*/

// LoginStart requests an OTP for an administrator phone number.
func (c *Client) LoginStart(ctx context.Context, phone string) (*portalauth.OTPChallenge, error) {
	return c.challenge(ctx, "/auth/admin/otp/start", otpStartRequest{Phone: phone})
}

// LoginVerify exchanges an administrator OTP for a credential grant.
func (c *Client) LoginVerify(ctx context.Context, phone, otp string) (*portalauth.CredentialGrant, error) {
	return c.login(ctx, "/auth/admin/otp/verify", otpVerifyRequest{Phone: phone, OTP: otp})
}

// AdminLogin performs an administrator password login.
func (c *Client) AdminLogin(ctx context.Context, identifier, password string) (*portalauth.CredentialGrant, error) {
	return c.login(ctx, "/auth/admin/login", passwordLoginRequest{Identifier: identifier, Password: password})
}

/*
====================================
OWNER PORTAL
====================================
*/

// RegisterOwner starts the owner registration flow.
func (c *Client) RegisterOwner(ctx context.Context, fullName, phone string) (*portalauth.OTPChallenge, error) {
	return c.challenge(ctx, "/auth/owner/register", otpStartRequest{Phone: phone, FullName: fullName})
}

// VerifyOwner completes owner registration with an OTP.
func (c *Client) VerifyOwner(ctx context.Context, phone, otp string) (*portalauth.CredentialGrant, error) {
	return c.login(ctx, "/auth/owner/verify", otpVerifyRequest{Phone: phone, OTP: otp})
}

// LoginStartOwner requests a login OTP for an existing owner.
func (c *Client) LoginStartOwner(ctx context.Context, phone string) (*portalauth.OTPChallenge, error) {
	return c.challenge(ctx, "/auth/owner/otp/start", otpStartRequest{Phone: phone})
}

// LoginVerifyOwner exchanges an owner login OTP for a credential grant.
func (c *Client) LoginVerifyOwner(ctx context.Context, phone, otp string) (*portalauth.CredentialGrant, error) {
	return c.login(ctx, "/auth/owner/otp/verify", otpVerifyRequest{Phone: phone, OTP: otp})
}

// OwnerLogin performs an owner password login.
func (c *Client) OwnerLogin(ctx context.Context, identifier, password string) (*portalauth.CredentialGrant, error) {
	return c.login(ctx, "/auth/owner/login", passwordLoginRequest{Identifier: identifier, Password: password})
}

/*
====================================
MEMBER PORTAL
====================================
*/

// MemberLoginStart requests a login OTP for a team member.
func (c *Client) MemberLoginStart(ctx context.Context, phone string) (*portalauth.OTPChallenge, error) {
	return c.challenge(ctx, "/auth/member/otp/start", otpStartRequest{Phone: phone})
}

// MemberLoginVerify exchanges a member login OTP for a credential grant.
func (c *Client) MemberLoginVerify(ctx context.Context, phone, otp string) (*portalauth.CredentialGrant, error) {
	return c.login(ctx, "/auth/member/otp/verify", otpVerifyRequest{Phone: phone, OTP: otp})
}

// MemberLogin performs a member password login.
func (c *Client) MemberLogin(ctx context.Context, phone, password string) (*portalauth.CredentialGrant, error) {
	return c.login(ctx, "/auth/member/login", passwordLoginRequest{Identifier: phone, Password: password})
}

/*
====================================
AGENCY PROVISIONING
====================================
*/

// CreateAgency provisions an agency on behalf of the bearer token's user.
func (c *Client) CreateAgency(ctx context.Context, token string, input portalauth.AgencyInput) (*portalauth.Agency, error) {
	var wire agencyResponse
	req := agencyRequest{
		Name:          input.Name,
		LicenseNumber: input.LicenseNumber,
		Address:       input.Address,
		District:      input.District,
		ContactPhone:  input.ContactPhone,
	}
	if err := c.post(ctx, "/agencies", token, req, &wire); err != nil {
		return nil, err
	}
	return &portalauth.Agency{ID: wire.ID, LicenseNumber: wire.LicenseNumber}, nil
}

var _ portalauth.Backend = (*Client)(nil)
