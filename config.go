package portalauth

import (
	"errors"
	"time"

	"github.com/rojgarlink/portalauth/credstore"
)

// Config defines a public type used by portalauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Token       TokenConfig
	Monitor     MonitorConfig
	Notify      NotifyConfig
	Credentials CredentialConfig
	Audit       AuditConfig
	Metrics     MetricsConfig

	// DevMode unlocks debug-only transitions such as [Engine.OverrideRole].
	// It must never be set in a production deployment.
	DevMode bool
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig defines a public type used by portalauth APIs.
//
// TokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenConfig struct {
	// DefaultExpiry is applied when a grant carries no expiry of its own.
	DefaultExpiry time.Duration
	// RequireExpiration closes the legacy carve-out that treats tokens
	// without expiration data as valid.
	RequireExpiration bool
}

// MonitorConfig defines a public type used by portalauth APIs.
//
// MonitorConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MonitorConfig struct {
	Enabled  bool
	Interval time.Duration
}

// NotifyConfig defines a public type used by portalauth APIs.
//
// NotifyConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type NotifyConfig struct {
	DebounceWindow time.Duration
}

// CredentialConfig defines a public type used by portalauth APIs.
//
// CredentialConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CredentialConfig struct {
	RedisPrefix string
}

// AuditConfig defines a public type used by portalauth APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by portalauth APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			DefaultExpiry: credstore.DefaultExpiry,
		},
		Monitor: MonitorConfig{
			Enabled:  true,
			Interval: 30 * time.Second,
		},
		Notify: NotifyConfig{
			DebounceWindow: 5 * time.Second,
		},
		Credentials: CredentialConfig{
			RedisPrefix: "pa",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are values; a shallow copy is a deep copy.
	return cfg
}

// Validate checks the configuration for values the engine cannot run with.
func (c Config) Validate() error {
	if c.Token.DefaultExpiry <= 0 {
		return errors.New("Token.DefaultExpiry must be positive")
	}
	if c.Monitor.Enabled && c.Monitor.Interval <= 0 {
		return errors.New("Monitor.Interval must be positive when the monitor is enabled")
	}
	if c.Notify.DebounceWindow < 0 {
		return errors.New("Notify.DebounceWindow cannot be negative")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit.BufferSize must be positive when audit is enabled")
	}
	return nil
}
