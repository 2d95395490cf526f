package sessauth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/sessauth/sessauth/internal/directory"
	"github.com/sessauth/sessauth/jwt"
)

// Builder assembles an Engine. A zero secret is the common case: Build then
// draws a fresh random secret, so tokens do not survive a process restart.
type Builder struct {
	config Config

	secret    []byte
	clock     func() time.Time
	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithSecret pins the signing secret instead of generating one. Intended for
// tests; production deployments should let Build generate it.
func (b *Builder) WithSecret(secret []byte) *Builder {
	b.secret = cloneBytes(secret)
	return b
}

// WithClock overrides the time source used for token issuance and expiry
// checks. Intended for tests.
func (b *Builder) WithClock(clock func() time.Time) *Builder {
	b.clock = clock
	return b
}

// WithAuditSink sets the destination for audit events. Without a sink, audit
// events are dropped.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the engine counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, generates the signing secret when none
// was pinned, and wires the engine. A builder can be used once.
//
// Failure to obtain secure random bytes for the secret is unrecoverable: no
// engine operation can proceed without one, so callers should treat that
// error as fatal at process start.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	secret := b.secret
	if len(secret) == 0 {
		secret = make([]byte, cfg.Token.SecretLength)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate signing secret: %w", err)
		}
	}

	jm, err := jwt.NewManager(jwt.Config{
		AccessTTL: cfg.Token.AccessTTL,
		Secret:    secret,
		Clock:     b.clock,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:     cfg,
		logins:     directory.NewStore(),
		jwtManager: jm,
		audit:      newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:    NewMetrics(cfg.Metrics),
	}

	b.built = true

	return engine, nil
}

func cloneBytes(in []byte) []byte {
	if in == nil {
		return nil
	}
	out := make([]byte, len(in))
	copy(out, in)
	return out
}
