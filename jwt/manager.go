package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenInvalid is the only error ParseAccess returns for a bad token. It
// covers malformed encodings, wrong or missing signatures, algorithm
// substitution, and expiry; callers cannot tell these apart.
var ErrTokenInvalid = errors.New("invalid token")

// Config carries the codec inputs. Instances are validated by NewManager and
// treated as immutable afterwards.
type Config struct {
	// AccessTTL is the lifetime stamped into every issued token.
	AccessTTL time.Duration
	// Secret is the process-lifetime HMAC key. It must never be persisted
	// or logged.
	Secret []byte
	// Clock supplies the current time for both issuance and validation.
	// Defaults to time.Now; overridable for expiry-boundary tests.
	Clock func() time.Time
}

// Manager issues and parses access tokens. Safe for concurrent use.
type Manager struct {
	config Config
}

// AccessClaims is the signed payload: subject loginname, role, and the
// registered exp/iat claims.
type AccessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// NewManager validates cfg and returns a codec bound to the given secret.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.AccessTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if len(cfg.Secret) < 16 {
		return nil, errors.New("hs512 requires a secret of at least 16 bytes")
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &Manager{config: cfg}, nil
}

// CreateAccess issues a token for subject with the given role, expiring
// AccessTTL after the codec clock's current time.
func (j *Manager) CreateAccess(subject, role string) (string, error) {
	now := j.config.Clock()

	claims := AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(j.config.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)

	return token.SignedString(j.config.Secret)
}

// ParseAccess checks the signature and expiry of tokenStr and returns its
// claims. The signing algorithm is pinned to HS512; a token claiming any
// other method is rejected before signature verification.
func (j *Manager) ParseAccess(tokenStr string) (*AccessClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.config.Clock),
	)

	token, err := parser.ParseWithClaims(tokenStr, &AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
		return j.config.Secret, nil
	})
	if err != nil {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// RemainingTTL reports how long the parsed claims stay valid from the codec
// clock's current time. Zero or negative means expired.
func (j *Manager) RemainingTTL(claims *AccessClaims) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Time.Sub(j.config.Clock())
}
