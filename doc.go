// Package portalauth is the session management and RBAC core for a
// multi-portal recruitment platform: token lifecycle with proactive refresh
// and expiration warnings, OTP and password login flows for the admin, owner,
// and member portals, and a static role→permission policy consulted by every
// navigation and UI guard.
//
// # Architecture boundaries
//
// portalauth is the public surface. It exposes [Engine], [Builder], [Config],
// and the [Backend] network contract. Credential persistence lives in
// credstore, policy tables in rbac, failure classification in autherr, and
// the HTTP backend client in httpapi. The Engine composes them; none of them
// import the Engine back.
//
// # What this package must NOT do
//
//   - Render UI or decide routing; it only reports access and redirect paths.
//   - Talk to the backend except through the [Backend] interface.
//   - Let a failed or stale login disturb the session that was current when
//     the call started.
//
// Engine methods are safe to call from multiple goroutines after
// [Builder.Build].
package portalauth
