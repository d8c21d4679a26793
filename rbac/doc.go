// Package rbac is the static role/permission policy for the recruitment
// portal: role→feature access, per-feature action grants, the permission
// catalog each role is issued at login, and the navigation items a role may
// see.
//
// # Design
//
// Everything in this package is data-driven and stateless. Lookups are pure
// functions over frozen tables; unknown roles and features resolve to "no
// access", never to an error. Raw role strings are normalized exactly once
// (legacy aliases agency_owner and agency_member map to owner and staff)
// before any table is consulted — callers must never compare role strings
// directly.
//
// # What this package must NOT do
//
//   - Perform I/O or read session state.
//   - Import any other portalauth package.
//   - Mutate its tables after init.
package rbac
