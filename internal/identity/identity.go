package identity

import "context"

type principalKey struct{}

// WithPrincipal binds the authenticated account id to the context. The
// session middleware calls this after verifying the token.
func WithPrincipal(ctx context.Context, principalID string) context.Context {
	if principalID == "" {
		return ctx
	}

	return context.WithValue(ctx, principalKey{}, principalID)
}

// PrincipalFromContext returns the bound account id, or "" when the request
// carries no authenticated session.
func PrincipalFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if value := ctx.Value(principalKey{}); value != nil {
		if id, ok := value.(string); ok {
			return id
		}
	}

	return ""
}

// ContextProvider resolves the current principal from request-scoped context
// values. Absence of a session is reported as an empty id, not an error.
type ContextProvider struct{}

// CurrentPrincipal implements the identity provider consumed by the guards.
func (ContextProvider) CurrentPrincipal(ctx context.Context) (string, error) {
	return PrincipalFromContext(ctx), nil
}
