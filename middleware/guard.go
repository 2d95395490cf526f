package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	sessauth "github.com/sessauth/sessauth"
)

// AccessTokenCookie is the cookie the guard reads when no Authorization
// header is present, and the cookie it re-sets on renewal.
const AccessTokenCookie = "access_token"

// RenewedTokenHeader carries the renewed token back to non-cookie clients.
const RenewedTokenHeader = "X-Access-Token"

type identityContextKey struct{}

// IdentityFromContext returns the verified identity injected by Guard.
func IdentityFromContext(ctx context.Context) (sessauth.LoginInfo, bool) {
	info, ok := ctx.Value(identityContextKey{}).(sessauth.LoginInfo)
	return info, ok
}

// Guard verifies the request's access token and injects the resulting
// identity into the request context. Requests without a valid token are
// rejected with 401.
//
// When the token's remaining lifetime has fallen below half the issue TTL,
// the guard refreshes it transparently: the fresh token is re-set as a cookie
// and echoed in the RenewedTokenHeader response header. Renewal failure is
// not fatal to the request; the current token already verified.
func Guard(engine *sessauth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := requestToken(r)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := RequestContext(r)

			info, remaining, err := engine.VerifyWithTTL(ctx, token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if remaining < sessauth.AccessTokenTTL/2 {
				if fresh, ttl, err := engine.Refresh(ctx, info); err == nil {
					SetAccessTokenCookie(w, r, fresh, ttl)
					w.Header().Set(RenewedTokenHeader, fresh)
				}
			}

			ctx = context.WithValue(ctx, identityContextKey{}, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole wraps a handler already behind Guard and rejects identities
// whose role does not match. 403, not 401: authentication has succeeded.
func RequireRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info, ok := IdentityFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if err := sessauth.Authorize(info, requiredRole); err != nil {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestContext attaches client IP and user agent from r to its context for
// audit metadata.
func RequestContext(r *http.Request) context.Context {
	ctx := r.Context()

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	ctx = sessauth.WithClientIP(ctx, host)
	ctx = sessauth.WithUserAgent(ctx, r.UserAgent())

	return ctx
}

// SetAccessTokenCookie sets the access token cookie with the token's TTL.
func SetAccessTokenCookie(w http.ResponseWriter, r *http.Request, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearAccessTokenCookie expires the access token cookie.
func ClearAccessTokenCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func requestToken(r *http.Request) (string, bool) {
	if token, ok := bearerToken(r.Header.Get("Authorization")); ok {
		return token, true
	}

	cookie, err := r.Cookie(AccessTokenCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
