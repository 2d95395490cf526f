package sessauth

// Role names assigned by the demo provisioning policy. The directory treats
// roles as opaque strings; only these two are ever produced by roleFor.
const (
	// RoleAdmin is granted to the literal loginname "admin".
	RoleAdmin = "admin"
	// RoleRegular is granted to every other loginname.
	RoleRegular = "regular"
)

// LoginInfo is the public identity projection returned by [Engine.Verify] and
// injected into request handlers. It deliberately omits the logged_in flag.
type LoginInfo struct {
	Loginname string `json:"loginname"`
	Role      string `json:"role"`
}

// StoredLoginInfo is the full directory record for a loginname. Role is
// immutable after first login; LoggedIn is the only field mutated afterwards.
// Entries are never removed, so the listing doubles as a seen-users audit log.
type StoredLoginInfo struct {
	Loginname string `json:"loginname"`
	Role      string `json:"role"`
	LoggedIn  bool   `json:"logged_in"`
}

// Public narrows a stored record to its public projection.
func (s StoredLoginInfo) Public() LoginInfo {
	return LoginInfo{
		Loginname: s.Loginname,
		Role:      s.Role,
	}
}

// Authorize is the role gate: it compares the verified identity's role against
// the required role. Pure comparison, no state, no side effects.
func Authorize(info LoginInfo, requiredRole string) error {
	if info.Role != requiredRole {
		return ErrForbidden
	}
	return nil
}

// roleFor derives the role for a loginname. The literal "admin" gets the admin
// role, everything else is regular. Demo provisioning policy, isolated here so
// a real policy can replace it without touching the token/directory model.
func roleFor(loginname string) string {
	if loginname == RoleAdmin {
		return RoleAdmin
	}
	return RoleRegular
}
