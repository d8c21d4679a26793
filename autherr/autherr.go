package autherr

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"time"
)

// Type tags an [Error] with its failure kind.
type Type string

const (
	// TypeTokenMissing is an exported constant used by the error classifier.
	TypeTokenMissing Type = "TOKEN_MISSING"
	// TypeTokenExpired is an exported constant used by the error classifier.
	TypeTokenExpired Type = "TOKEN_EXPIRED"
	// TypeTokenInvalid is an exported constant used by the error classifier.
	TypeTokenInvalid Type = "TOKEN_INVALID"
	// TypeRefreshFailed is an exported constant used by the error classifier.
	TypeRefreshFailed Type = "REFRESH_FAILED"
	// TypeNetworkError is an exported constant used by the error classifier.
	TypeNetworkError Type = "NETWORK_ERROR"
	// TypeUnauthorized is an exported constant used by the error classifier.
	TypeUnauthorized Type = "UNAUTHORIZED"
)

func (t Type) known() bool {
	switch t {
	case TypeTokenMissing, TypeTokenExpired, TypeTokenInvalid,
		TypeRefreshFailed, TypeNetworkError, TypeUnauthorized:
		return true
	}
	return false
}

// Error is a tagged auth failure. It is created at classification time and
// never persisted.
type Error struct {
	Type       Type
	StatusCode int
	Message    string
	Context    map[string]string
	Timestamp  time.Time
}

// New creates a tagged [Error] stamped with the current time.
func New(t Type, msg string) *Error {
	return &Error{
		Type:      t,
		Message:   msg,
		Context:   map[string]string{},
		Timestamp: time.Now(),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return string(e.Type) + ": " + e.Message
	}
	return string(e.Type)
}

// WithStatus sets the HTTP status code observed with the failure.
func (e *Error) WithStatus(code int) *Error {
	e.StatusCode = code
	return e
}

// WithContext merges kv pairs into the error's context map.
func (e *Error) WithContext(kv map[string]string) *Error {
	if e.Context == nil {
		e.Context = map[string]string{}
	}
	for k, v := range kv {
		e.Context[k] = v
	}
	return e
}

// StatusCarrier is implemented by transport errors that observed an HTTP
// status code. The classifier checks it alongside wrapped [Error] values so
// a 401 is recognized regardless of which layer surfaced it.
type StatusCarrier interface {
	HTTPStatus() int
}

// networkErrorCodes are syscall-style fragments that identify connectivity
// failures across platforms.
var networkErrorCodes = []string{
	"ECONNREFUSED",
	"ETIMEDOUT",
	"ENOTFOUND",
	"ENETUNREACH",
	"ECONNRESET",
	"EHOSTUNREACH",
}

// networkMessagePatterns match transport-failure text from the HTTP stack.
var networkMessagePatterns = []string{
	"network",
	"fetch",
	"connection refused",
	"connection reset",
	"no such host",
	"timeout",
	"timed out",
	"dial tcp",
	"unreachable",
	"broken pipe",
	"eof",
}

// IsNetworkError reports whether err is a connectivity failure rather than
// an authentication failure. Tagged NETWORK_ERROR values, net.Error values,
// known syscall codes, and transport-failure message patterns all qualify.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}

	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Type == TypeNetworkError
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, code := range networkErrorCodes {
		if strings.Contains(err.Error(), code) {
			return true
		}
	}
	for _, pattern := range networkMessagePatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// IsAuthError reports whether err is an authentication failure: a tagged
// non-network [Error], or any error carrying a 401 status. Network errors
// are never auth errors.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Type != TypeNetworkError && tagged.Type.known()
	}

	if IsNetworkError(err) {
		return false
	}

	var carrier StatusCarrier
	if errors.As(err, &carrier) && carrier.HTTPStatus() == http.StatusUnauthorized {
		return true
	}
	return false
}

// RedirectPath maps a login portal to its login route. Unknown or empty
// portals fall back to the member path.
func RedirectPath(portal string) string {
	switch portal {
	case "admin":
		return "/login"
	case "owner":
		return "/owner/login"
	default:
		return "/member/login"
	}
}

// Normalize converts an arbitrary failure into a tagged [Error]: an existing
// tag is kept, connectivity failures become NETWORK_ERROR, a 401 becomes
// UNAUTHORIZED, anything else becomes TOKEN_INVALID. context plus the
// original message land in the context map.
func Normalize(err error, context map[string]string) *Error {
	if err == nil {
		return nil
	}

	var normalized *Error
	var tagged *Error
	switch {
	case errors.As(err, &tagged):
		normalized = tagged
	case IsNetworkError(err):
		normalized = New(TypeNetworkError, err.Error())
	default:
		var carrier StatusCarrier
		if errors.As(err, &carrier) && carrier.HTTPStatus() == http.StatusUnauthorized {
			normalized = New(TypeUnauthorized, err.Error()).WithStatus(http.StatusUnauthorized)
		} else {
			normalized = New(TypeTokenInvalid, err.Error())
		}
	}

	merged := map[string]string{"originalMessage": err.Error()}
	for k, v := range context {
		merged[k] = v
	}
	return normalized.WithContext(merged)
}
