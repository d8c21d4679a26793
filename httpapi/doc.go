// Package httpapi implements the portalauth network boundary over HTTP.
//
// [Client] satisfies the engine's Backend interface by issuing JSON requests
// against the recruitment platform API and normalizing its responses into
// credential grants. It is the only package in the module that knows about
// URLs, status codes, or wire shapes.
//
// # Architecture boundaries
//
// This package depends on the root portalauth package for the boundary types
// it produces. Nothing else in the module depends on this package: the engine
// accepts any Backend implementation, and tests substitute their own.
//
// # What this package must NOT do
//
//   - Persist credentials. The engine owns the credential store.
//   - Interpret roles or permissions. Grants carry raw role strings.
//   - Retry failed requests. Callers decide retry policy.
package httpapi
