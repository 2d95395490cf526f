// Package jwt wraps token creation and parsing for the session core.
//
// Tokens are HMAC-SHA-512 signed JWTs carrying {sub, role, exp, iat}. The
// Manager is stateless: validity is a pure function of the secret, the claims,
// and the clock. Every parse failure collapses into the single ErrTokenInvalid
// so callers cannot probe why a token was rejected.
package jwt
