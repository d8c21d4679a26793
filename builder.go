package portalauth

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rojgarlink/portalauth/autherr"
	"github.com/rojgarlink/portalauth/credstore"
)

// Builder defines a public type used by portalauth APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	credBackend credstore.Backend
	backend     Backend
	auditSink   AuditSink
	callbacks   []autherr.Callback
	now         func() time.Time

	built bool
}

// New creates a [Builder] carrying the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis persists credentials in Redis so sessions survive process
// restarts. Without it (and without [Builder.WithCredentialBackend]) an
// in-process memory backend is used.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithCredentialBackend supplies a custom credential persistence backend.
// Takes precedence over [Builder.WithRedis].
func (b *Builder) WithCredentialBackend(backend credstore.Backend) *Builder {
	b.credBackend = backend
	return b
}

// WithBackend supplies the network boundary implementation. Required.
func (b *Builder) WithBackend(backend Backend) *Builder {
	b.backend = backend
	return b
}

// WithAuditSink supplies the audit event sink. Enables audit dispatch when
// [Config.Audit.Enabled] is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithNotifyCallback registers a notification callback at build time.
// Further callbacks can be registered later via [Engine.Notifier].
func (b *Builder) WithNotifyCallback(cb autherr.Callback) *Builder {
	if cb != nil {
		b.callbacks = append(b.callbacks, cb)
	}
	return b
}

// WithClock overrides the engine's time source. Tests use it to drive a
// virtual clock through the store, the notifier, and audit timestamps.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithDevMode toggles debug-only transitions such as [Engine.OverrideRole].
func (b *Builder) WithDevMode(enabled bool) *Builder {
	b.config.DevMode = enabled
	return b
}

// Build validates the configuration and assembles the [Engine].
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.backend == nil {
		return nil, errors.New("backend required")
	}

	now := b.now
	if now == nil {
		now = time.Now
	}

	// -------- CREDENTIAL STORE --------
	credBackend := b.credBackend
	if credBackend == nil {
		if b.redis != nil {
			credBackend = credstore.NewRedisBackend(b.redis, cfg.Credentials.RedisPrefix)
		} else {
			credBackend = credstore.NewMemoryBackend()
		}
	}
	store := credstore.NewStore(credBackend,
		credstore.WithClock(now),
		credstore.WithDefaultExpiry(cfg.Token.DefaultExpiry),
		credstore.WithRequireExpiration(cfg.Token.RequireExpiration),
	)

	// -------- NOTIFIER --------
	notifier := autherr.NewNotifier(
		autherr.WithDebounce(cfg.Notify.DebounceWindow),
		autherr.WithNotifierClock(now),
	)
	for _, cb := range b.callbacks {
		notifier.Register(cb)
	}

	engine := &Engine{
		config:   cfg,
		store:    store,
		backend:  b.backend,
		notifier: notifier,
		audit:    newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:  NewMetrics(cfg.Metrics),
		now:      now,
	}

	b.built = true

	return engine, nil
}
