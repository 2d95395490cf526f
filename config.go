package sessauth

import (
	"errors"
	"time"
)

// AccessTokenTTL is the fixed lifetime of every issued access token.
const AccessTokenTTL = 60 * time.Second

// Config carries engine configuration. Instances are cloned by the Builder and
// treated as immutable after Build.
type Config struct {
	Token   TokenConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig configures the token codec. AccessTTL exists so the codec stays
// testable; DefaultConfig pins it to AccessTokenTTL and the core offers no
// surface to change it.
type TokenConfig struct {
	AccessTTL time.Duration
	// SecretLength is the size of the random signing secret generated by
	// Build when no secret is supplied.
	SecretLength int
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig configures async audit event dispatch.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull makes Emit non-blocking: events are counted and dropped
	// when the buffer is full instead of blocking the caller.
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig configures the atomic counter set.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the configuration used by the demo server: 60 second
// tokens, a 32-byte signing secret, audit and metrics enabled.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			AccessTTL:    AccessTokenTTL,
			SecretLength: 32,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks the configuration for values the engine cannot operate with.
func (c Config) Validate() error {
	if c.Token.AccessTTL <= 0 {
		return errors.New("invalid TTL configuration")
	}
	if c.Token.SecretLength < 16 {
		return errors.New("secret length must be at least 16 bytes")
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("invalid audit buffer size")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	// all fields are value types today; clone exists so config can grow
	// reference fields without changing Builder semantics
	return cfg
}
