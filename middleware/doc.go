// Package middleware provides net/http composition around the sessauth
// engine: bearer/cookie token extraction, identity injection into the request
// context, transparent near-expiry token renewal, and role gating for
// privileged handlers.
package middleware
