// Package credstore persists the bearer credential set for a portal session:
// token, absolute expiration, session start, user record, permission list,
// login portal, and agency identifier.
//
// # Design
//
// Each field lives under its own stable key behind a pluggable [Backend], so
// reading one field never requires reading the others and Clear removes
// exactly the known key set. [MemoryBackend] is the default; [RedisBackend]
// persists across process restarts.
//
// # Architecture boundaries
//
// This package owns storage and time arithmetic only. It performs no
// authentication calls and never decides who may log in. Read accessors are
// deliberately forgiving: missing or malformed state yields zero values and
// defaults, never an error escape into the caller.
package credstore
