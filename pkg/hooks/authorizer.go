package hooks

import "context"

// Role names understood by RoleAuthorizer.
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

type actorKey struct{}

// WithActor returns a context carrying the acting user's role.
func WithActor(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, actorKey{}, role)
}

// ActorFromContext returns the acting user's role, or empty when none
// is set.
func ActorFromContext(ctx context.Context) string {
	role, _ := ctx.Value(actorKey{}).(string)
	return role
}

// RoleAuthorizer grants capabilities by role: admins can do anything,
// viewers nothing that mutates.
type RoleAuthorizer struct{}

// Can reports whether the acting user in ctx holds capability.
func (RoleAuthorizer) Can(ctx context.Context, capability string) bool {
	switch ActorFromContext(ctx) {
	case RoleAdmin:
		return true
	default:
		return false
	}
}

// AllowAll grants every capability. Useful for CLI tooling running as
// the operator.
type AllowAll struct{}

func (AllowAll) Can(context.Context, string) bool { return true }
