package transport

import "context"

type routeContextKey struct{}

// WithRoute attaches the application route the caller is currently on to ctx.
// The transport consults it when deciding whether a hard authentication
// failure must force a navigation home.
func WithRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, routeContextKey{}, route)
}

// RouteFromContext describes the routefromcontext operation and its observable behavior.
//
// RouteFromContext does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func RouteFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	route, _ := ctx.Value(routeContextKey{}).(string)
	return route
}
