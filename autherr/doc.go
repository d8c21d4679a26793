// Package autherr classifies failures observed at the network boundary into
// auth errors, network errors, and everything else, and owns the debounced
// user-notification fan-out.
//
// Classification is pure: [IsAuthError] and [IsNetworkError] never perform
// I/O and are mutually exclusive for any given error. The [Notifier] is the
// only stateful piece — it suppresses repeat notifications inside a fixed
// debounce window so concurrent failure paths surface at most one message.
package autherr
