package portalauth

import "context"

type clientIPContextKey struct{}
type requestedLocationContextKey struct{}

// WithClientIP attaches the caller's IP address to ctx. The Engine records
// it on audit events.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithRequestedLocation attaches the location the user originally asked for
// before being bounced to a login page. [Engine.RedirectPath] preserves it so
// the host can restore the location after a successful login.
func WithRequestedLocation(ctx context.Context, location string) context.Context {
	return context.WithValue(ctx, requestedLocationContextKey{}, location)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

// RequestedLocationFromContext returns the location recorded by
// [WithRequestedLocation], or "" when none was set.
func RequestedLocationFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	location, _ := ctx.Value(requestedLocationContextKey{}).(string)
	return location
}
