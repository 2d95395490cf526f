// Package sessauth provides a minimal session-authentication core: it issues,
// verifies, refreshes, and revokes signed bearer tokens for named users and
// tracks each user's last-known login state in process memory.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// sessauth is the public surface. It exposes [Engine], [Builder], [Config],
// and the value types ([LoginInfo], [StoredLoginInfo], [AuditEvent],
// [MetricsSnapshot]). The login directory lives under internal/ and is never
// exported; the token codec lives in the jwt subpackage.
//
// # Consistency model
//
// A token authenticates a request if and only if it is unexpired, correctly
// signed, and its subject is currently marked logged in by the directory.
// Logout flips the directory flag without touching issued tokens, so a still
// unexpired token dies the moment its subject logs out. The directory is the
// source of truth for roles; claims carried inside a token are never trusted
// for authorization decisions.
//
// # What this package must NOT do
//
//   - Persist anything. The directory is process-memory only and dies with
//     the process.
//   - Verify passwords. Login accepts any password; this is a documented stub
//     that callers must replace before production use.
//   - Distinguish token failure causes to callers. Every verification failure
//     surfaces as the same opaque error.
package sessauth
