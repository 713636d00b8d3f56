package authclient

import (
	"context"

	"github.com/workscout/authclient/transport"
)

// WithRoute attaches the application route the caller is currently on to ctx.
// Both the transport's hard-auth-failure handling and the manager's redirect
// policy read it when deciding whether to force a navigation home.
func WithRoute(ctx context.Context, route string) context.Context {
	return transport.WithRoute(ctx, route)
}

func routeFromContext(ctx context.Context) string {
	return transport.RouteFromContext(ctx)
}
