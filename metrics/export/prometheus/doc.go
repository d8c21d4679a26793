// Package prometheus renders portalauth counters in Prometheus text
// exposition format.
//
// [NewExporter] accepts a [portalauth.Engine] and exposes an [http.Handler]
// that serves every engine counter plus the audit drop counter. Counter
// names are prefixed portalauth_*_total.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
