package sessauth

import (
	"context"
	"log"
	"time"

	"github.com/sessauth/sessauth/internal/directory"
	"github.com/sessauth/sessauth/jwt"
)

// Engine orchestrates login, logout, token verification, and token refresh by
// composing the token codec and the login directory. Construct it through
// [Builder.Build]; all methods are safe for concurrent use afterwards.
type Engine struct {
	config     Config
	logins     *directory.Store
	jwtManager *jwt.Manager
	audit      *auditDispatcher
	metrics    *Metrics
}

// Close flushes and stops the audit dispatcher. The engine must not be used
// after Close.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were dropped because the
// dispatch buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters: map[MetricID]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Login marks loginname as logged in and issues an access token for it.
//
// The password is accepted unconditionally. This is an intentional,
// documented stub: this package owns the token/directory consistency model,
// and a real credential check slots in here without changing that model.
//
// The role is derived from the loginname on first login and never recomputed:
// a name already present in the directory keeps its existing role regardless
// of what roleFor would say today.
func (e *Engine) Login(ctx context.Context, loginname, password string) (string, time.Duration, error) {
	_ = password // accepted unconditionally, see above

	if e == nil || e.jwtManager == nil {
		return "", 0, ErrEngineNotReady
	}
	if loginname == "" {
		e.metricInc(MetricLoginFailure)
		e.auditEmit(ctx, AuditLogin, "", "", false, ErrInvalidLogin)
		return "", 0, ErrInvalidLogin
	}

	// the directory's role wins over the freshly derived one for names that
	// were already provisioned
	rec := e.logins.UpsertLoggedIn(loginname, roleFor(loginname))
	role := rec.Role

	token, err := e.jwtManager.CreateAccess(loginname, role)
	if err != nil {
		log.Printf("sessauth: token signing failed for login: %v", err)
		e.metricInc(MetricLoginFailure)
		e.auditEmit(ctx, AuditLogin, loginname, role, false, ErrInternal)
		return "", 0, ErrInternal
	}

	e.metricInc(MetricLoginSuccess)
	e.auditEmit(ctx, AuditLogin, loginname, role, true, nil)

	return token, e.config.Token.AccessTTL, nil
}

// Verify checks tokenStr and returns the public identity it authenticates.
//
// A token is accepted if and only if it is unexpired, correctly signed, and
// its subject is currently logged in according to the directory. The returned
// role is read from the directory entry, not from the token claims: the
// directory is the source of truth, so a stale token cannot assert an
// outdated or tampered role.
func (e *Engine) Verify(ctx context.Context, tokenStr string) (LoginInfo, error) {
	info, _, err := e.VerifyWithTTL(ctx, tokenStr)
	return info, err
}

// VerifyWithTTL behaves like Verify and additionally reports how long the
// token stays valid. Middleware uses the remaining TTL to renew tokens that
// are close to expiry.
func (e *Engine) VerifyWithTTL(ctx context.Context, tokenStr string) (LoginInfo, time.Duration, error) {
	if e == nil || e.jwtManager == nil {
		return LoginInfo{}, 0, ErrEngineNotReady
	}

	claims, err := e.jwtManager.ParseAccess(tokenStr)
	if err != nil {
		e.metricInc(MetricVerifyFailure)
		return LoginInfo{}, 0, ErrInvalidAccessToken
	}

	rec, ok := e.logins.Get(claims.Subject)
	if !ok || !rec.LoggedIn {
		e.metricInc(MetricVerifyFailure)
		return LoginInfo{}, 0, ErrInvalidAccessToken
	}

	e.metricInc(MetricVerifySuccess)

	info := LoginInfo{
		Loginname: rec.Loginname,
		Role:      rec.Role,
	}
	return info, e.jwtManager.RemainingTTL(claims), nil
}

// Refresh issues a fresh token for an already verified identity. The identity
// is re-validated against the directory rather than trusted: a subject that
// logged out between verification and refresh gets ErrInvalidAccessToken, and
// the new token carries the directory's current role.
func (e *Engine) Refresh(ctx context.Context, identity LoginInfo) (string, time.Duration, error) {
	if e == nil || e.jwtManager == nil {
		return "", 0, ErrEngineNotReady
	}

	rec, ok := e.logins.Get(identity.Loginname)
	if !ok || !rec.LoggedIn {
		e.metricInc(MetricRefreshFailure)
		e.auditEmit(ctx, AuditRefresh, identity.Loginname, identity.Role, false, ErrInvalidAccessToken)
		return "", 0, ErrInvalidAccessToken
	}

	token, err := e.jwtManager.CreateAccess(rec.Loginname, rec.Role)
	if err != nil {
		log.Printf("sessauth: token signing failed for refresh: %v", err)
		e.metricInc(MetricRefreshFailure)
		e.auditEmit(ctx, AuditRefresh, rec.Loginname, rec.Role, false, ErrInternal)
		return "", 0, ErrInternal
	}

	e.metricInc(MetricRefreshSuccess)
	e.auditEmit(ctx, AuditRefresh, rec.Loginname, rec.Role, true, nil)

	return token, e.config.Token.AccessTTL, nil
}

// Logout marks the identity's loginname as logged out. Idempotent: repeating
// the call leaves the directory unchanged. The entry itself stays in the
// directory so the seen-users listing keeps its audit value.
func (e *Engine) Logout(ctx context.Context, identity LoginInfo) {
	if e == nil || e.logins == nil {
		return
	}

	e.logins.SetLoggedOut(identity.Loginname)
	e.metricInc(MetricLogout)
	e.auditEmit(ctx, AuditLogout, identity.Loginname, identity.Role, true, nil)
}

// SeenUsers returns every loginname seen since process start, in loginname
// order, with current login state. Entries are never removed, so this doubles
// as a who-has-ever-logged-in audit listing.
func (e *Engine) SeenUsers(ctx context.Context) []StoredLoginInfo {
	if e == nil || e.logins == nil {
		return nil
	}

	recs := e.logins.List()
	out := make([]StoredLoginInfo, 0, len(recs))
	for _, rec := range recs {
		out = append(out, StoredLoginInfo{
			Loginname: rec.Loginname,
			Role:      rec.Role,
			LoggedIn:  rec.LoggedIn,
		})
	}
	return out
}

// SeenUserAt returns the public projection of the directory entry at the
// given position in loginname order, or ErrNotFound when the index is out of
// range.
func (e *Engine) SeenUserAt(ctx context.Context, index int) (LoginInfo, error) {
	if e == nil || e.logins == nil {
		return LoginInfo{}, ErrEngineNotReady
	}

	rec, ok := e.logins.At(index)
	if !ok {
		return LoginInfo{}, ErrNotFound
	}
	return LoginInfo{
		Loginname: rec.Loginname,
		Role:      rec.Role,
	}, nil
}

func (e *Engine) auditEmit(ctx context.Context, eventType, loginname, role string, success bool, cause error) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		Loginname: loginname,
		Role:      role,
		IP:        clientIPFromContext(ctx),
		Success:   success,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	if ua := userAgentFromContext(ctx); ua != "" {
		event.Metadata = map[string]string{"user_agent": ua}
	}

	e.audit.Emit(ctx, event)
}
